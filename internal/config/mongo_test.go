package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingClient struct {
	disconnects int
}

func (c *countingClient) Disconnect(context.Context) error {
	c.disconnects++
	return nil
}

func TestPrepareKeepsClientOnSuccess(t *testing.T) {
	client := &countingClient{}
	ran := 0
	step := func(context.Context) error { ran++; return nil }

	assert.NoError(t, prepare(context.Background(), client, step, step))
	assert.Equal(t, 2, ran)
	assert.Zero(t, client.disconnects)
}

func TestPrepareDisconnectsOnFailure(t *testing.T) {
	pingErr := errors.New("failed to ping MongoDB")
	indexErr := errors.New("failed to create indexes")
	ok := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		steps   []func(context.Context) error
		wantErr error
	}{
		{"ping fails", []func(context.Context) error{func(context.Context) error { return pingErr }, ok}, pingErr},
		{"index creation fails", []func(context.Context) error{ok, func(context.Context) error { return indexErr }}, indexErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &countingClient{}
			err := prepare(context.Background(), client, tt.steps...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, client.disconnects)
		})
	}
}
