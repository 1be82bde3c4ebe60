package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeDSNSummary(t *testing.T) {
	assert.Equal(t, "host=pg port=5432 db=selfie user=app sslmode=disable",
		SafeDSNSummary("postgres://app:secret@pg:5432/selfie?sslmode=disable"))
	assert.Equal(t, "host=pg db=selfie user=app", SafeDSNSummary("postgres://app:secret@pg/selfie"))
	assert.Equal(t, "dsn: parse error", SafeDSNSummary("::::"))
	assert.NotContains(t, SafeDSNSummary("postgres://app:secret@pg:5432/selfie"), "secret")
}

func TestGenerationRepo_Insert(t *testing.T) {
	db := openFake()
	defer db.Close()
	r := NewGenerationRepo(db)
	ctx := context.Background()

	require.NoError(t, r.EnsureSchema(ctx))
	require.NoError(t, r.Insert(ctx, Record{
		BotID:     "goa_artist_female",
		Email:     "a@b.c",
		Message:   "hi",
		ImagePath: "/static/images/x.png",
		Context:   map[string]string{"emotion": "happy"},
	}))

	fakeDriver.mu.Lock()
	defer fakeDriver.mu.Unlock()
	require.GreaterOrEqual(t, len(fakeDriver.execs), 2)
	assert.Contains(t, fakeDriver.execs[0].query, "create table if not exists generations")
	last := fakeDriver.execs[len(fakeDriver.execs)-1]
	assert.Contains(t, last.query, "insert into generations")
	require.Len(t, last.args, 5)
	assert.Equal(t, "goa_artist_female", last.args[0])
	assert.JSONEq(t, `{"emotion":"happy"}`, string(last.args[4].([]byte)))
}

func TestGenerationRepo_InsertBadContext(t *testing.T) {
	r := NewGenerationRepo(openFake())
	err := r.Insert(context.Background(), Record{Context: make(chan int)})
	assert.Error(t, err)
}
