package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndReadVan(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	id := e.addVan(access, "Modest Explorer", 60)

	w := e.request(http.MethodGet, "/vans/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	van := decode(t, w)["van"].(map[string]interface{})
	assert.Equal(t, "Modest Explorer", van["name"])
	assert.Equal(t, float64(60), van["pricePerDay"])
	assert.Equal(t, e.cfg.DefaultVanImage, van["image"])
	host := van["host"].(map[string]interface{})
	assert.Equal(t, "Ann Lee", host["full_name"])
	assert.Equal(t, "ann@mail.com", host["email"])

	w = e.request(http.MethodGet, "/vans/"+unknownUUID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Van does not exist", decode(t, w)["message"])

	w = e.request(http.MethodGet, "/vans/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListVansByType(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	e.addVan(access, "Modest Explorer", 60)
	w := e.request(http.MethodPost, "/addVan", map[string]interface{}{
		"name": "The Cruiser", "description": "Big", "type": "Luxury", "pricePerDay": "120",
	}, access)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.request(http.MethodGet, "/vans", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["vans"], 2)

	w = e.request(http.MethodGet, "/vans?type=Luxury", nil, "")
	vans := decode(t, w)["vans"].([]interface{})
	require.Len(t, vans, 1)
	assert.Equal(t, "The Cruiser", vans[0].(map[string]interface{})["name"])
	assert.Equal(t, float64(120), vans[0].(map[string]interface{})["pricePerDay"])
}

func TestAddVanRejections(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	base := func(overrides map[string]interface{}) map[string]interface{} {
		body := map[string]interface{}{"name": "Van", "description": "Nice", "type": "Rugged", "pricePerDay": 50}
		for k, v := range overrides {
			body[k] = v
		}
		return body
	}

	tests := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing", base(map[string]interface{}{"description": ""}), "Required data missing"},
		{"zero price counts as missing", base(map[string]interface{}{"pricePerDay": 0}), "Required data missing"},
		{"long name", base(map[string]interface{}{"name": strings.Repeat("n", 61)}), "Name is too long"},
		{"long description", base(map[string]interface{}{"description": strings.Repeat("d", 1501)}), "Description is too long"},
		{"bad type", base(map[string]interface{}{"type": "Camper"}), "Invalid Van type"},
		{"fractional price", base(map[string]interface{}{"pricePerDay": 12.5}), "Inadmissible price"},
		{"negative price", base(map[string]interface{}{"pricePerDay": -3}), "Price must be positive"},
		{"huge price", base(map[string]interface{}{"pricePerDay": 2000001}), "Price too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.request(http.MethodPost, "/addVan", tt.body, access)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, true, body["dataMsg"])
		})
	}

	w := e.request(http.MethodPost, "/addVan", base(map[string]interface{}{"pricePerDay": 2000000}), access)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateVanRenamesReviews(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	id := e.addVan(access, "Modest Explorer", 60)
	e.review(id, 5)

	update := map[string]interface{}{
		"vanUUID": id, "name": "Modest Explorer", "description": "A cosy van", "type": "Simple", "pricePerDay": 60,
	}
	w := e.request(http.MethodPatch, "/updateVan", update, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No modifications detected", decode(t, w)["message"])

	update["name"] = "Bold Explorer"
	w = e.request(http.MethodPatch, "/updateVan", update, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Van data updated", decode(t, w)["message"])

	van, err := e.store.Vans().FindByUUID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Bold Explorer", van.Name)

	reviews, err := e.store.Reviews().ListByOwner(context.Background(), van.HostID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Bold Explorer", reviews[0].VanName)
}

func TestFailedRenameLeavesVanAndReviews(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	id := e.addVan(access, "Modest Explorer", 60)
	e.review(id, 5)

	e.store.FailCommits(errors.New("disk full"))
	update := map[string]interface{}{
		"vanUUID": id, "name": "Bold Explorer", "description": "A cosy van", "type": "Simple", "pricePerDay": 60,
	}
	w := e.request(http.MethodPatch, "/updateVan", update, access)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	e.store.FailCommits(nil)

	van, err := e.store.Vans().FindByUUID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Modest Explorer", van.Name)

	reviews, err := e.store.Reviews().ListByOwner(context.Background(), van.HostID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Modest Explorer", reviews[0].VanName)
}

func TestVanMutationsByStranger(t *testing.T) {
	e := newEnv(t)
	owner := e.signUp("ann@mail.com")
	id := e.addVan(owner, "Modest Explorer", 60)
	e.register("Bob", "Ray", "bob@mail.com")
	stranger, _ := e.login("bob@mail.com")

	w := e.request(http.MethodPatch, "/updateVan", map[string]interface{}{
		"vanUUID": id, "name": "Mine now", "description": "x", "type": "Simple", "pricePerDay": 60,
	}, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", decode(t, w)["message"])

	w = e.request(http.MethodDelete, "/deleteVan", map[string]interface{}{"vanUUID": id}, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.upload("/uploadVanImage", stranger, map[string]string{"vanUUID": id}, "image", "van.png", []byte("img"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.request(http.MethodDelete, "/deleteVan", map[string]interface{}{"vanUUID": "nope"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid UUID", decode(t, w)["message"])

	w = e.request(http.MethodDelete, "/deleteVan", map[string]interface{}{"vanUUID": unknownUUID}, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The Van does not exist", decode(t, w)["message"])
}

func TestDeleteVanKeepsReviewsAndRemovesMedia(t *testing.T) {
	e := newEnv(t)
	access := e.signUp("ann@mail.com")
	id := e.addVan(access, "Modest Explorer", 60)
	e.review(id, 4)

	w := e.upload("/uploadVanImage", access, map[string]string{"vanUUID": id}, "image", "van.jpeg", []byte("img"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Image updated", decode(t, w)["message"])
	dir := filepath.Join(e.media.Root, "vans", id)
	assert.DirExists(t, dir)

	w = e.request(http.MethodPost, "/deleteVan", map[string]interface{}{"vanUUID": id}, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Van deleted", body["message"])
	assert.Equal(t, true, body["success"])

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	defaultPath, _ := e.media.Resolve(e.cfg.DefaultVanImage)
	assert.FileExists(t, defaultPath)

	w = e.request(http.MethodGet, "/getUser", nil, access)
	user := decode(t, w)["logged_user"].(map[string]interface{})
	assert.Empty(t, user["vans"])
	reviews := user["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, id, reviews[0].(map[string]interface{})["van_uuid"])
}
