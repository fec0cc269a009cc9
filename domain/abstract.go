package domain

import (
	"time"

	"github.com/tuffdb/tuff/identity"
)

// AbstractId, TagGroupId, TopicId are distinct identifier types so the
// compiler catches a TopicId passed where a TagGroupId was expected, even
// though all three are backed by the same random Id.
type (
	AbstractId identity.Id
	TagGroupId identity.Id
	TopicId    identity.Id
)

func NewAbstractId() AbstractId { return AbstractId(identity.New()) }
func NewTagGroupId() TagGroupId { return TagGroupId(identity.New()) }
func NewTopicId() TopicId       { return TopicId(identity.New()) }

func (id AbstractId) String() string { return identity.Id(id).String() }
func (id TagGroupId) String() string { return identity.Id(id).String() }
func (id TopicId) String() string    { return identity.Id(id).String() }

// Abstract is the durable, indexable summary of one verified fragment.
type Abstract struct {
	Id           AbstractId         `json:"id"`
	TopicId      TopicId            `json:"topic_id"`
	TagGroupId   TagGroupId         `json:"tag_group_id"`
	Tags         TagBits            `json:"tags"`
	// Claims mirrors the original's claims field. No abstractor in this
	// repo populates it yet; it is carried through empty rather than
	// omitted so the structured-WAL line shape matches the external
	// interface.
	Claims       []Claim            `json:"claims"`
	Summary      string             `json:"summary"`
	Verification VerificationStatus `json:"verification"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewAbstract builds an Abstract with a fresh id, the caller-supplied
// topic/tag-group linkage and tags, and the default grade (GrayMid) a freshly
// ingested fragment starts at until a verifier says otherwise.
func NewAbstract(topicID TopicId, tagGroupID TagGroupId, tags []string, summary string) Abstract {
	return Abstract{
		Id:           NewAbstractId(),
		TopicId:      topicID,
		TagGroupId:   tagGroupID,
		Tags:         TagBits{Tags: tags},
		Claims:       []Claim{},
		Summary:      summary,
		Verification: GrayMid,
		CreatedAt:    time.Now().UTC(),
	}
}
