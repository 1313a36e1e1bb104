package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/mel/diagnostic"
)

func TestStreamPeek(t *testing.T) {
	s := NewStream(Mel(), "(a 1)")

	tests := []struct {
		offset   int
		expected TokenType
	}{
		{0, OPENED_PARENS},
		{1, NAME},
		{2, INT},
		{3, CLOSED_PARENS},
		{4, EOF},
		{10, EOF},
	}

	for _, test := range tests {
		token, err := s.Peek(test.offset)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, token.Type)
	}

	assert.Equal(t, 0, s.Pos())
}

func TestStreamRead(t *testing.T) {
	s := NewStream(Mel(), "name 'value'  ")

	token, err := s.Read(NAME)
	assert.NoError(t, err)
	assert.Equal(t, "name", token.Text)
	assert.Equal(t, 4, s.Pos())
	assert.Equal(t, "name", s.Last().Text)

	t.Run("mismatch leaves the cursor untouched", func(t *testing.T) {
		_, err := s.Read(INT, FLOAT)
		assert.IsError(t, err, diagnostic.ErrUnexpectedToken)
		assert.Contains(t, err.Error(), "expected INT or FLOAT, got STRING")
		assert.Equal(t, 4, s.Pos())

		offset, ok := diagnostic.OffsetOf(err)
		assert.True(t, ok)
		assert.Equal(t, 5, offset)
	})

	token, err = s.Read()
	assert.NoError(t, err)
	assert.Equal(t, "value", token.Value())
	assert.True(t, s.IsEOF())
	assert.False(t, s.IsNext(STRING))
	assert.Equal(t, "name 'value'  ", s.Text())
}

func TestStreamSaveRestore(t *testing.T) {
	s := NewStream(Mel(), "[1 2 3]")

	_, err := s.Read(OPENED_BRACKET)
	assert.NoError(t, err)

	cp := s.Save()

	for range 3 {
		_, err := s.Read(INT)
		assert.NoError(t, err)
	}

	assert.Equal[any](t, int64(3), s.Last().Value())
	assert.True(t, s.IsNext(CLOSED_BRACKET))

	s.Restore(cp)
	assert.Equal(t, 1, s.Pos())
	assert.Equal(t, OPENED_BRACKET, s.Last().Type)

	token, err := s.Read(INT)
	assert.NoError(t, err)
	assert.Equal[any](t, int64(1), token.Value())
}

func TestStreamLexerError(t *testing.T) {
	s := NewStream(Mel(), "a ^")

	_, err := s.Read(NAME)
	assert.NoError(t, err)

	_, err = s.Read()
	assert.IsError(t, err, diagnostic.ErrNoMatch)
	assert.False(t, s.IsEOF())
	assert.Equal(t, 1, s.Pos())
}
