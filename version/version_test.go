package version

import "testing"

func TestConstantsAreNonEmpty(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Product == "" {
		t.Error("Product should not be empty")
	}
	if Manufacturer == "" {
		t.Error("Manufacturer should not be empty")
	}
}

func TestConstantsAreNotPlaceholders(t *testing.T) {
	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}
	for _, p := range placeholders {
		if Version == p || Product == p || Manufacturer == p {
			t.Errorf("a version constant equals placeholder value %q", p)
		}
	}
}

func TestConstantsAreReasonableLength(t *testing.T) {
	for name, v := range map[string]string{"Version": Version, "Product": Product, "Manufacturer": Manufacturer} {
		if len(v) > 100 {
			t.Errorf("%s is unreasonably long: %q", name, v)
		}
	}
}
