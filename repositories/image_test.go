package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatline/errors"
)

func Test_Store_And_Serve_Image(t *testing.T) {
	req := require.New(t)
	repository := NewImageRepository(openTestDB(t))

	blob := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	id, err := repository.StoreImage(blob, "image/png")
	req.NoError(err)
	req.NotEmpty(id)

	data, contentType, err := repository.GetImage(id)
	req.NoError(err)
	req.Equal(blob, data)
	req.Equal("image/png", contentType)

	_, _, err = repository.GetImage("missing")
	req.ErrorIs(err, errors.ErrImageNotFound)
}
