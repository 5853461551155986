package password

import "testing"

func TestHashVerifyRoundTrip(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	if !Verify("correct horse battery staple", encoded) {
		t.Fatal("expected matching password to verify")
	}
	if Verify("wrong password", encoded) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	second, err := Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts to produce distinct encodings")
	}
}

func TestVerifyMalformedEncoding(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$only-one-part",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	} {
		if Verify("anything", encoded) {
			t.Fatalf("expected malformed encoding %q to fail verification", encoded)
		}
	}
}
