package rustext

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase", "ПИЦЦА Маргарита", "пицца маргарита"},
		{"yo folding", "Свёкла", "свекла"},
		{"hyphen splits", "Бизнес-ланч", "бизнес ланч"},
		{"em dash splits", "суп — харчо", "суп харчо"},
		{"slash and dot split", "чай/кофе 0.5", "чай кофе 0 5"},
		{"punctuation stripped", "вок! с курицей?", "вок с курицей"},
		{"brackets split", "сет (большой)", "сет большой"},
		{"quotes split", `пицца "пепперони"`, "пицца пепперони"},
		{"whitespace collapsed", "  суп \t  дня  ", "суп дня"},
		{"latin lookalikes folded", "кoфe", "кофе"},
		{"all latin lookalike word", "capxo", "сархо"},
		{"latin kept when not lookalike", "wok меню", "wok меню"},
		{"digits kept", "кола 330мл", "кола 330мл"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Бизнес-ланч", "кoфe с молоком", "Свёкла!", "  пицца  ", "WOK (острый)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSeparatorEquivalence(t *testing.T) {
	a := Normalize("бизнес-ланч")
	b := Normalize("бизнес ланч")
	if a != b || a != "бизнес ланч" {
		t.Errorf("separator forms diverge: %q vs %q", a, b)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"simple", "бизнес ланч", []string{"бизнес", "ланч"}},
		{"single rune dropped", "суп с лапшой", []string{"суп", "лапшой"}},
		{"single digit kept", "кола 3 литра", []string{"кола", "3", "литра"}},
		{"duplicates preserved", "суп суп", []string{"суп", "суп"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("суп"); got != 3 {
		t.Errorf("RuneLen(суп) = %d, want 3", got)
	}
	if got := RuneLen("кофе"); got != 4 {
		t.Errorf("RuneLen(кофе) = %d, want 4", got)
	}
	if got := RuneLen(""); got != 0 {
		t.Errorf("RuneLen empty = %d, want 0", got)
	}
}
