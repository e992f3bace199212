package extension

import (
	"testing"
	"time"
)

func TestMergeWithDefaults(t *testing.T) {
	e := &Extension{}

	got := e.mergeWithDefaults(Config{})
	want := DefaultConfig()
	if got.NumberPrefix != want.NumberPrefix || got.NumberWidth != want.NumberWidth {
		t.Errorf("number format: got %s/%d", got.NumberPrefix, got.NumberWidth)
	}
	if got.Currency != want.Currency {
		t.Errorf("currency: got %s", got.Currency)
	}
	if got.QueueSize != want.QueueSize || got.SendTimeout != want.SendTimeout {
		t.Errorf("queue: got %d/%v", got.QueueSize, got.SendTimeout)
	}

	// Explicit values survive the merge.
	got = e.mergeWithDefaults(Config{NumberPrefix: "ACME", QueueSize: 10})
	if got.NumberPrefix != "ACME" || got.QueueSize != 10 {
		t.Errorf("explicit values overwritten: %s/%d", got.NumberPrefix, got.QueueSize)
	}
	if got.Currency != want.Currency {
		t.Errorf("unset field not defaulted: %s", got.Currency)
	}
}

func TestMergeConfigurations(t *testing.T) {
	e := &Extension{}

	yaml := Config{NumberPrefix: "YML", SendTimeout: 10 * time.Second}
	prog := Config{
		DisableMigrate: true,
		NumberPrefix:   "PRG",
		Currency:       "eur",
		Driver:         "postgres",
		SMTP:           SMTPConfig{Host: "smtp.test", Port: 587},
	}

	got := e.mergeConfigurations(yaml, prog)

	// YAML wins where set; programmatic fills gaps.
	if got.NumberPrefix != "YML" {
		t.Errorf("prefix: got %s, want YML", got.NumberPrefix)
	}
	if got.SendTimeout != 10*time.Second {
		t.Errorf("timeout: got %v", got.SendTimeout)
	}
	if got.Currency != "eur" {
		t.Errorf("currency: got %s, want eur", got.Currency)
	}
	if got.Driver != "postgres" {
		t.Errorf("driver: got %s", got.Driver)
	}
	if got.SMTP.Host != "smtp.test" {
		t.Errorf("smtp host: got %s", got.SMTP.Host)
	}
	if !got.DisableMigrate {
		t.Error("programmatic DisableMigrate should carry over")
	}

	// Untouched fields still fall back to defaults.
	if got.NumberWidth != DefaultConfig().NumberWidth {
		t.Errorf("width: got %d", got.NumberWidth)
	}
}
