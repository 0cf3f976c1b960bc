package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKeyIsDeterministic(t *testing.T) {
	id := snowflake.ID(42)

	a := IdempotencyKey(id, "invoice", "cus_1|100")
	b := IdempotencyKey(id, "invoice", "cus_1|100")
	assert.Equal(t, a, b)
	assert.Regexp(t, `^booking:42:invoice:[0-9a-f]{16}$`, a)

	assert.NotEqual(t, a, IdempotencyKey(id, "invoice", "cus_1|101"))
	assert.NotEqual(t, a, IdempotencyKey(id, "finalize", "cus_1|100"))
	assert.NotEqual(t, a, IdempotencyKey(snowflake.ID(43), "invoice", "cus_1|100"))
}
