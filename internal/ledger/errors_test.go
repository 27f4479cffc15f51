package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ledgerkv/internal/record"
)

func TestErrorPredicates(t *testing.T) {
	nf := notFound(record.KindClaim, 3, "claim with id=%d was not found", 3)
	inv := invalidInput(record.KindObligation, "bad")
	in := internal(record.KindPolicy, "insert policy", errors.New("disk full"))

	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(inv))
	assert.True(t, IsInvalidInput(inv))
	assert.True(t, IsInternal(in))

	wrapped := fmt.Errorf("handler: %w", nf)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))

	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.False(t, IsInternal(nil))
}

func TestErrorMessages(t *testing.T) {
	nf := notFound(record.KindClaim, 3, "claim with id=%d was not found", 3)
	assert.Equal(t, "NOT_FOUND: claim with id=3 was not found", nf.Error())

	cause := errors.New("disk full")
	in := internal(record.KindPolicy, "insert policy", cause)
	assert.Equal(t, "INTERNAL_ERROR: insert policy: disk full", in.Error())
	assert.ErrorIs(t, in, cause)
}
