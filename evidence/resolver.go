package evidence

import "os"

// FixedTargetResolver returns a URLResolver that ignores its fragment
// argument and always returns target, matching the minimal reference
// fetcher: one configured URL fetched regardless of what is being verified.
func FixedTargetResolver(target string) URLResolver {
	return func(string) string { return target }
}

// EnvTargetResolver reads TARGET_URL from the environment on every call,
// defaulting to defaultTarget if unset.
func EnvTargetResolver(defaultTarget string) URLResolver {
	return func(string) string {
		if v := os.Getenv("TARGET_URL"); v != "" {
			return v
		}
		return defaultTarget
	}
}
