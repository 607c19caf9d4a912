package columns

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headers = []string{"ID", "Source", "Machine_Translation", "Human-Reference"}

func TestSuggest(t *testing.T) {
	mt, ref := Suggest(headers)
	assert.Equal(t, []int{2}, mt)
	assert.Equal(t, []int{3}, ref)

	mt, ref = Suggest([]string{"DeepL output", "Gold target", "notes"})
	assert.Equal(t, []int{0}, mt)
	assert.Equal(t, []int{1}, ref)
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		a    Answers
		want Result
	}{
		{"defaults to suggestions", Answers{}, Result{MT: "Machine_Translation", Ref: "Human-Reference"}},
		{"numbers", Answers{MT: "1", Ref: "2", Confirm: "y"}, Result{MT: "ID", Ref: "Source"}},
		{"names", Answers{MT: "Source", Ref: "ID"}, Result{MT: "Source", Ref: "ID"}},
		{"cancel", Answers{Confirm: "No"}, Result{Cancelled: true}},
		{"anything else confirms", Answers{Confirm: "maybe"}, Result{MT: "Machine_Translation", Ref: "Human-Reference"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(headers, tc.a)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(headers, Answers{MT: "9"})
	var ce *ChoiceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "machine translation column: please enter a number between 1 and 4", err.Error())

	_, err = Resolve(headers, Answers{MT: "abc"})
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "valid number")

	_, err = Resolve(headers, Answers{MT: "3", Ref: "3"})
	assert.ErrorIs(t, err, ErrSameColumn)

	_, err = Resolve([]string{"a", "b"}, Answers{})
	assert.ErrorIs(t, err, ErrNoSuggestion)

	_, err = Resolve(nil, Answers{})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestPrompt_RetriesUntilValid(t *testing.T) {
	rows := [][]string{
		{"1", "", "", ""},
		{"2", "Bonjour", strings.Repeat("x", 60), "hello"},
	}
	in := strings.NewReader("0\nabc\n\n3\n\ny\n")
	var out bytes.Buffer

	got, err := Prompt(in, &out, "report_fr.xlsx", headers, rows)
	require.NoError(t, err)
	assert.Equal(t, Result{MT: "Machine_Translation", Ref: "Human-Reference"}, got)

	s := out.String()
	assert.Contains(t, s, "Available columns in 'report_fr.xlsx':")
	assert.Contains(t, s, " 2. Source\n    Sample: Bonjour\n")
	assert.Contains(t, s, "Sample: "+strings.Repeat("x", 50)+"...\n")
	assert.Contains(t, s, "(suggested: 3): ")
	assert.Contains(t, s, "Please enter a number between 1 and 4.")
	assert.Contains(t, s, "Please enter a valid number.")
	assert.Contains(t, s, "Selected MT column: 'Machine_Translation'")
	assert.Contains(t, s, "Machine translation and reference columns must be different")
	assert.Contains(t, s, "COLUMN SELECTION SUMMARY:")
}

func TestPrompt_Cancel(t *testing.T) {
	var out bytes.Buffer
	got, err := Prompt(strings.NewReader("\n\nn\n"), &out, "a.xlsx", headers, nil)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	assert.Contains(t, out.String(), "Column selection cancelled.")
}

func TestPrompt_InputClosed(t *testing.T) {
	_, err := Prompt(strings.NewReader("1\n"), &bytes.Buffer{}, "a.xlsx", headers, nil)
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestSampleValue(t *testing.T) {
	rows := [][]string{{"  "}, {" 中文样例 "}}
	v, ok := SampleValue(rows, 0)
	require.True(t, ok)
	assert.Equal(t, "中文样例", v)

	_, ok = SampleValue(rows, 3)
	assert.False(t, ok)

	wide := [][]string{{strings.Repeat("汉", 30)}}
	v, _ = SampleValue(wide, 0)
	assert.Equal(t, strings.Repeat("汉", 25)+"...", v)
}
