package memstore

import (
	"context"
	"io"
	"testing"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMemBlobStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	ticket, err := s.IssueTicket(ctx, "abc.png", model.PNG)
	require.NoError(t, err)
	require.Equal(t, "abc.png", ticket.Key)

	require.NoError(t, s.Put(ctx, ticket, []byte("img-bytes")))

	r, cType, err := s.Get(ctx, "abc.png")
	require.NoError(t, err)
	require.Equal(t, model.PNG, cType)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, []byte("img-bytes"), data)
}

// повторное чтение должно возвращать байт-в-байт то же содержимое
func TestMemBlobStorage_GetIsRepeatable(t *testing.T) {
	ctx := context.Background()
	s := New()

	ticket, _ := s.IssueTicket(ctx, "k.jpg", model.JPEG)
	require.NoError(t, s.Put(ctx, ticket, []byte("stable")))

	first, _, err := s.Get(ctx, "k.jpg")
	require.NoError(t, err)
	second, _, err := s.Get(ctx, "k.jpg")
	require.NoError(t, err)

	b1, _ := io.ReadAll(first)
	b2, _ := io.ReadAll(second)
	require.Equal(t, b1, b2)
}

func TestMemBlobStorage_GetMissing(t *testing.T) {
	s := New()

	_, _, err := s.Get(context.Background(), "unknown-id")
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

func TestMemBlobStorage_PutNilTicket(t *testing.T) {
	s := New()

	err := s.Put(context.Background(), nil, []byte("x"))
	require.ErrorIs(t, err, model.ErrUploadFailed)
}

func TestMemBlobStorage_Reference(t *testing.T) {
	s := New()
	ticket, _ := s.IssueTicket(context.Background(), "images/a.png", model.PNG)

	require.Equal(t, "/objects/images/a.png", s.Reference(ticket))
}
