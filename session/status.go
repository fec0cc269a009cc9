package session

import "github.com/tuffdb/tuff/domain"

func statusToWire(s domain.VerificationStatus) string {
	return s.String()
}
