package status

import "testing"

type fakePresence map[string]bool

func (f fakePresence) Contains(userID string) bool { return f[userID] }

type fakeManual map[string]Status

func (f fakeManual) Get(userID string) (Status, bool) {
	st, ok := f[userID]
	return st, ok
}

func TestResolver_Effective(t *testing.T) {
	tests := []struct {
		name     string
		present  bool
		manual   Status
		hasEntry bool
		want     Status
	}{
		{"disconnected overrides manual online", false, Online, true, Offline},
		{"disconnected overrides manual dnd", false, DND, true, Offline},
		{"disconnected with no entry", false, "", false, Offline},
		{"invisible mode", true, Offline, true, Offline},
		{"manual away", true, Away, true, Away},
		{"manual dnd", true, DND, true, DND},
		{"manual online", true, Online, true, Online},
		{"present with no entry defaults to online", true, "", false, Online},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presence := fakePresence{}
			if tt.present {
				presence["u1"] = true
			}
			manual := fakeManual{}
			if tt.hasEntry {
				manual["u1"] = tt.manual
			}

			r := NewResolver(presence, manual)
			if got := r.Effective("u1"); got != tt.want {
				t.Errorf("Effective() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolver_RecomputesPerCall(t *testing.T) {
	presence := fakePresence{"u1": true}
	manual := fakeManual{}
	r := NewResolver(presence, manual)

	if got := r.Effective("u1"); got != Online {
		t.Fatalf("Expected online, got %s", got)
	}

	// Either source can move independently; the next read reflects it
	// with no invalidation step.
	manual["u1"] = DND
	if got := r.Effective("u1"); got != DND {
		t.Errorf("Expected dnd after manual change, got %s", got)
	}

	delete(presence, "u1")
	if got := r.Effective("u1"); got != Offline {
		t.Errorf("Expected offline after presence drop, got %s", got)
	}
}
