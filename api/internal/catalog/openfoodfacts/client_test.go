package openfoodfacts

import (
	"context"
	"errors"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf-scan/api/internal/pipeline"
)

const searchURL = `=~^https://world\.openfoodfacts\.org/cgi/search\.pl`

func newTestClient(t *testing.T) *Client {
	c := New("https://world.openfoodfacts.org", "shelf-scan-test/1.0")
	httpmock.ActivateNonDefault(c.httpc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestFindCandidates_MapsProducts(t *testing.T) {
	c := newTestClient(t)
	httpmock.RegisterResponder("GET", searchURL,
		httpmock.NewStringResponder(200, `{"products":[
			{"code":"0001","product_name":"Oat Milk","brands":"Acme, AcmeCo","categories":"Dairy-Alt, Drinks","image_front_url":"https://x/img.png"},
			{"code":"0002","product_name":"Oat Drink","brands":"Brio","categories":"Drinks","image_front_url":""},
			{"code":"","product_name":"no gtin"},
			{"code":"0003","product_name":""}
		]}`))

	cands, err := c.FindCandidates(context.Background(), "oat milk", nil)
	require.NoError(t, err)
	require.Len(t, cands, 2) // записи без code/product_name пропускаются

	assert.NotEmpty(t, cands[0].ID)
	assert.Equal(t, "0001", cands[0].GTIN)
	assert.Equal(t, "Oat Milk", cands[0].ProductName)
	assert.Equal(t, "Acme", cands[0].BrandName)
	assert.Equal(t, "Dairy-Alt", cands[0].Category)
	assert.Equal(t, "https://x/img.png", cands[0].ImageURL)

	// порядок каталога сохраняется, пересортировки нет
	assert.Equal(t, "0002", cands[1].GTIN)
}

func TestFindCandidates_EmptyResultIsNotAnError(t *testing.T) {
	c := newTestClient(t)
	httpmock.RegisterResponder("GET", searchURL,
		httpmock.NewStringResponder(200, `{"products":[]}`))

	cands, err := c.FindCandidates(context.Background(), "nonexistent", nil)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestFindCandidates_ServerErrorIsCatalogUnavailable(t *testing.T) {
	c := newTestClient(t)
	httpmock.RegisterResponder("GET", searchURL,
		httpmock.NewStringResponder(500, "boom"))

	_, err := c.FindCandidates(context.Background(), "cola", nil)
	assert.True(t, errors.Is(err, pipeline.ErrCatalogUnavailable))
}

func TestFindCandidates_BadJSONIsCatalogUnavailable(t *testing.T) {
	c := newTestClient(t)
	httpmock.RegisterResponder("GET", searchURL,
		httpmock.NewStringResponder(200, "<html>"))

	_, err := c.FindCandidates(context.Background(), "cola", nil)
	assert.True(t, errors.Is(err, pipeline.ErrCatalogUnavailable))
}

func TestFindCandidates_EmptyLabelIsInvalidInput(t *testing.T) {
	c := newTestClient(t)
	_, err := c.FindCandidates(context.Background(), "  ", nil)
	assert.True(t, errors.Is(err, pipeline.ErrInvalidInput))
}
