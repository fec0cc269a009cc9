package evidence

import (
	"errors"
	"testing"
)

func TestValidateURLRejectsNonHTTPScheme(t *testing.T) {
	if err := ValidateURL("file:///etc/passwd"); !errors.Is(err, ErrUnsafeScheme) {
		t.Fatalf("expected ErrUnsafeScheme, got %v", err)
	}
}

func TestValidateURLRejectsLoopbackLiteral(t *testing.T) {
	for _, u := range []string{"http://127.0.0.1/", "http://[::1]/", "http://169.254.169.254/"} {
		if err := ValidateURL(u); !errors.Is(err, ErrSSRF) {
			t.Fatalf("expected ErrSSRF for %q, got %v", u, err)
		}
	}
}

func TestValidateURLRejectsPrivateLiteral(t *testing.T) {
	for _, u := range []string{"http://10.0.0.5/", "http://192.168.1.1/", "http://172.16.0.1/"} {
		if err := ValidateURL(u); !errors.Is(err, ErrSSRF) {
			t.Fatalf("expected ErrSSRF for %q, got %v", u, err)
		}
	}
}

func TestValidateURLAllowsPublicLiteral(t *testing.T) {
	if err := ValidateURL("https://93.184.216.34/"); err != nil {
		t.Fatalf("expected a public IP literal to pass, got %v", err)
	}
}

func TestValidateURLRejectsMissingHost(t *testing.T) {
	if err := ValidateURL("http:///no-host"); err == nil {
		t.Fatal("expected an error for a URL with no host")
	}
}
