package i18n

import "testing"

func TestTFallsBackToKey(t *testing.T) {
	if got := T(LocaleEN, "error.does_not_exist"); got != "error.does_not_exist" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := T("xx", "error.inquiry_invalid"); got != "Invalid fields for inquiry." {
		t.Fatalf("expected default locale fallback, got %q", got)
	}
}

func TestSprintf(t *testing.T) {
	got := Sprintf(LocaleEN, "error.inquiry_status", "closed")
	if got != "Invalid status: closed." {
		t.Fatalf("unexpected message: %q", got)
	}
	got = Sprintf(LocaleEN, "msg.category_created", "Party Wear")
	if got != `Category "Party Wear" created successfully!` {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":                        LocaleEN,
		"en-US,en;q=0.9":          LocaleEN,
		"fr-FR":                   LocaleEN,
		"not a language header!!": LocaleEN,
	}
	for header, want := range cases {
		if got := Match(header); got != want {
			t.Fatalf("Match(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestRegisterAddsLocale(t *testing.T) {
	Register("es", map[string]string{"msg.cart_cleared": "Carrito vaciado."})
	if got := Match("es-ES,es;q=0.9"); got != "es" {
		t.Fatalf("expected es, got %q", got)
	}
	if got := T("es", "msg.cart_cleared"); got != "Carrito vaciado." {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := T("es", "error.inquiry_invalid"); got != "Invalid fields for inquiry." {
		t.Fatalf("expected fallback to english, got %q", got)
	}
}
