package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mineRequest struct {
	Index      uint64 `json:"index"`
	Difficulty uint   `json:"difficulty" validate:"max=256"`
}

type peerRequest struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

func TestCheck(t *testing.T) {
	assert.NoError(t, validate.Check(mineRequest{Index: 1, Difficulty: 4}))
	assert.NoError(t, validate.Check(peerRequest{Host: "localhost:9080"}))

	err := validate.Check(mineRequest{Difficulty: 300})
	require.Error(t, err)

	fields := errs.GetFieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "difficulty", fields[0].Field)
	assert.Contains(t, fields[0].Err, "256")

	err = validate.Check(peerRequest{})
	require.True(t, errs.IsFieldErrors(err))
	assert.Equal(t, "host is a required field", errs.GetFieldErrors(err).Fields()["host"])
}
