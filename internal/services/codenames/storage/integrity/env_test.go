package integrity

import "testing"

func TestKeyringFromEnvUnset(t *testing.T) {
	t.Setenv("CODENAMES_EVENT_HMAC_KEYS", "")
	t.Setenv("CODENAMES_EVENT_HMAC_KEY", "")
	ring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if ring != nil {
		t.Fatal("expected nil keyring when no key is configured")
	}
}

func TestKeyringFromEnvSingleKey(t *testing.T) {
	t.Setenv("CODENAMES_EVENT_HMAC_KEYS", "")
	t.Setenv("CODENAMES_EVENT_HMAC_KEY", "secret")
	t.Setenv("CODENAMES_EVENT_HMAC_KEY_ID", "k7")
	ring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if ring.ActiveKeyID() != "k7" {
		t.Fatalf("active key id = %q, want k7", ring.ActiveKeyID())
	}
}

func TestEnvKeyringMultipleKeys(t *testing.T) {
	ring, err := Env{Keys: "v1=old, v2=new", KeyID: "v2"}.Keyring()
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	sig, keyID, err := ring.SignChainHash("game-1", "hash")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if keyID != "v2" {
		t.Fatalf("key id = %q, want v2", keyID)
	}
	if err := ring.VerifyChainHash("game-1", "hash", sig, "v2"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestEnvKeyringRejectsMalformedEntries(t *testing.T) {
	for _, spec := range []string{"v1", "=secret", "v1="} {
		if _, err := (Env{Keys: spec, KeyID: "v1"}).Keyring(); err == nil {
			t.Fatalf("Keyring(%q) expected error", spec)
		}
	}
}
