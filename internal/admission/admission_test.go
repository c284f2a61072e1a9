package admission

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		GlobalInterval: 12 * time.Second,
		UserCooldown:   75 * time.Second,
		MaxRangeSpan:   5,
	}
}

func at(sec int) time.Time {
	return time.Unix(1_700_000_000, 0).Add(time.Duration(sec) * time.Second)
}

func TestRejectsNonReference(t *testing.T) {
	c := New(testConfig())
	d := c.Admit("alice", "hello everyone", at(0))
	if d.Admitted || d.Reason != ReasonNoReference {
		t.Fatalf("expected no_reference rejection, got %+v", d)
	}
}

func TestRejectsNumericBookWord(t *testing.T) {
	c := New(testConfig())
	// "101 12:30" is reference-shaped to detection but has no book word,
	// so extraction comes up empty. Must reject, never admit "".
	d := c.Admit("alice", "room 101 12:30", at(0))
	if d.Admitted {
		t.Fatalf("admitted with reference %q", d.Request.Reference)
	}
	if d.Reason != ReasonNoReference {
		t.Fatalf("expected no_reference, got %+v", d)
	}
	// The rejection must not have burned the throttle or the cooldown.
	if d := c.Admit("alice", "John 3:16", at(1)); !d.Admitted {
		t.Fatalf("throttle state committed on empty-extract reject: %+v", d)
	}
}

func TestGlobalThrottle(t *testing.T) {
	c := New(testConfig())
	if d := c.Admit("alice", "John 3:16", at(0)); !d.Admitted {
		t.Fatalf("first admit failed: %+v", d)
	}
	// Different user 1s later hits the global throttle.
	d := c.Admit("bob", "Psalm 23:1", at(1))
	if d.Admitted || d.Reason != ReasonGlobalThrottle {
		t.Fatalf("expected global_throttle, got %+v", d)
	}
	// 13s apart both pass.
	if d := c.Admit("bob", "Psalm 23:1", at(13)); !d.Admitted {
		t.Fatalf("expected admit at 13s, got %+v", d)
	}
}

func TestGlobalThrottleDoesNotTouchUserState(t *testing.T) {
	c := New(testConfig())
	c.Admit("alice", "John 3:16", at(0))
	c.Admit("bob", "Psalm 23:1", at(1)) // global throttle hit
	// bob was never admitted, so his cooldown must not have started.
	if d := c.Admit("bob", "Psalm 23:1", at(13)); !d.Admitted {
		t.Fatalf("bob should be cooldown-free after a global-throttle reject: %+v", d)
	}
}

func TestUserCooldown(t *testing.T) {
	c := New(testConfig())
	if d := c.Admit("alice", "John 3:16", at(0)); !d.Admitted {
		t.Fatalf("first admit failed: %+v", d)
	}
	d := c.Admit("alice", "John 3:17", at(70))
	if d.Admitted || d.Reason != ReasonUserCooldown {
		t.Fatalf("expected user_cooldown at 70s, got %+v", d)
	}
	if d := c.Admit("alice", "John 3:17", at(76)); !d.Admitted {
		t.Fatalf("expected admit at 76s, got %+v", d)
	}
}

func TestUserCooldownDoesNotTouchGlobalState(t *testing.T) {
	c := New(testConfig())
	c.Admit("alice", "John 3:16", at(0))
	c.Admit("alice", "John 3:17", at(20)) // user cooldown hit
	// Global throttle last fired at t=0, so bob at t=21 must pass.
	if d := c.Admit("bob", "Psalm 23:1", at(21)); !d.Admitted {
		t.Fatalf("user-cooldown reject must not bump global state: %+v", d)
	}
}

func TestAdmittedReferenceIsCanonicalAndClamped(t *testing.T) {
	c := New(testConfig())
	d := c.Admit("alice", "read  joHn3:1-99 please", at(0))
	if !d.Admitted {
		t.Fatalf("expected admit, got %+v", d)
	}
	if d.Request.Reference != "John 3:1-6" {
		t.Fatalf("got reference %q", d.Request.Reference)
	}
	if d.Request.SourceUser != "alice" {
		t.Fatalf("got source %q", d.Request.SourceUser)
	}
}
