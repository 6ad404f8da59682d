package services

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/models/dtos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest() dtos.FormReturnRequest {
	return dtos.FormReturnRequest{
		OrganizationName: "Wat Phra Singh",
		OrganizationType: "temple",
		FirstName:        "Anan",
		LastName:         "Saetang",
		Province:         "Chiang Mai",
		PhoneNumber:      "0531234567",
		SignerCount:      12,
	}
}

func (e *testEnv) images(t *testing.T) FormImages {
	return FormImages{Image1: bytes.NewReader(pngBytes(t)), Image2: bytes.NewReader(pngBytes(t))}
}

func TestFormReturnService_InvalidPhoneWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := formRequest()
	req.PhoneNumber = "053123456"
	_, err := env.forms.Create(ctx, req, env.images(t))
	se := requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("phoneNumber"))

	count, err := env.repos.forms.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, env.storedKeys(t))
}

func TestFormReturnService_RejectsMissingOrBrokenImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.forms.Create(ctx, formRequest(), FormImages{Image1: bytes.NewReader(pngBytes(t))})
	se := requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.Equal(t, constants.MsgImagesRequired, se.Message)

	_, err = env.forms.Create(ctx, formRequest(), FormImages{
		Image1: bytes.NewReader(pngBytes(t)),
		Image2: strings.NewReader("%PDF-1.4 not an image"),
	})
	se = requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeInvalidImage)
	assert.True(t, strings.HasPrefix(se.Message, "image2:"))

	req := formRequest()
	req.SignerCount = 1
	_, err = env.forms.Create(ctx, req, env.images(t))
	se = requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("signerCount"))

	assert.Empty(t, env.storedKeys(t))
}

func TestFormReturnService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.forms.Create(ctx, formRequest(), env.images(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Image1, constants.FolderFormReturns+"/"))
	assert.ElementsMatch(t, []string{created.Image1, created.Image2}, env.storedKeys(t))

	resp := env.forms.ToResponse(created)
	assert.Equal(t, "/uploads/"+created.Image1, resp.Image1URL)
	assert.Equal(t, "0531234567", resp.PhoneNumber)

	req := formRequest()
	req.SignerCount = 30
	updated, err := env.forms.Update(ctx, created.ID, req, FormImages{Image1: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.SignerCount)
	assert.NotEqual(t, created.Image1, updated.Image1)
	assert.Equal(t, created.Image2, updated.Image2)
	assert.ElementsMatch(t, []string{updated.Image1, updated.Image2}, env.storedKeys(t))

	_, err = env.forms.Update(ctx, created.ID, req, FormImages{Image2: strings.NewReader("junk")})
	requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeInvalidImage)
	assert.Len(t, env.storedKeys(t), 2)

	require.NoError(t, env.forms.Delete(ctx, created.ID))
	assert.Empty(t, env.storedKeys(t))
	_, err = env.forms.Get(ctx, created.ID)
	requireServiceError(t, err, http.StatusNotFound, constants.ErrCodeNotFound)
}

func TestFormReturnService_ListFiltersShareSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, province := range []string{"Chiang Mai", "Lampang", "Chiang Mai"} {
		req := formRequest()
		req.Province = province
		_, err := env.forms.Create(ctx, req, env.images(t))
		require.NoError(t, err)
	}

	resp, err := env.forms.List(ctx, url.Values{"province": {"Chiang Mai"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Pagination.TotalItems)
	assert.Equal(t, []string{"Chiang Mai", "Lampang"}, resp.Filters["province"])
	for _, item := range resp.Items {
		assert.NotEmpty(t, item.Image1URL)
	}
}
