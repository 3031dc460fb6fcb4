// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"errors"
	"testing"
)

func TestRegistry_Defaults(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	if got := reg.Active().Name; got != NameStandard {
		t.Errorf("Active().Name = %q, want %q", got, NameStandard)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != NameStandard || names[1] != NameUltrasonic {
		t.Errorf("Names() = %v, want [standard ultrasonic]", names)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	if err := reg.SetActive(NameUltrasonic); err != nil {
		t.Fatalf("SetActive(ultrasonic) error = %v", err)
	}
	if got := reg.Active().Name; got != NameUltrasonic {
		t.Errorf("Active().Name = %q, want %q", got, NameUltrasonic)
	}
}

func TestRegistry_SetActiveUnknown(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.SetActive(NameUltrasonic); err != nil {
		t.Fatal(err)
	}

	err := reg.SetActive("hypersonic")
	if !errors.Is(err, ErrUnknownProtocol) {
		t.Fatalf("SetActive(unknown) error = %v, want ErrUnknownProtocol", err)
	}

	// Failed selection must not change the active protocol.
	if got := reg.Active().Name; got != NameUltrasonic {
		t.Errorf("Active().Name after failed SetActive = %q, want %q", got, NameUltrasonic)
	}
}

func TestRegistry_RegisterCustom(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	custom := Standard()
	custom.Name = "lab"
	custom.BaseBin = 200
	reg.Register(custom)

	if err := reg.SetActive("lab"); err != nil {
		t.Fatalf("SetActive(lab) error = %v", err)
	}
	if got := reg.Active().BaseBin; got != 200 {
		t.Errorf("Active().BaseBin = %d, want 200", got)
	}
}

func TestRegistry_ActiveIsSnapshot(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	snap := reg.Active()

	if err := reg.SetActive(NameUltrasonic); err != nil {
		t.Fatal(err)
	}

	if snap.Name != NameStandard {
		t.Errorf("snapshot mutated by SetActive: %q", snap.Name)
	}
}

func TestRandomIdentifier_AlwaysValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Protocol{Standard(), Ultrasonic()} {
		for range 200 {
			id := RandomIdentifier(p)
			if !p.ValidIdentifier(id) {
				t.Fatalf("%s: RandomIdentifier() = %q not valid", p.Name, id)
			}
		}
	}
}

func TestRandomArray_AlwaysValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Protocol{Standard(), Ultrasonic()} {
		for range 200 {
			arr := RandomArray(p)
			if !p.ValidArray(arr) {
				t.Fatalf("%s: RandomArray() = %v not valid", p.Name, arr)
			}
		}
	}
}
