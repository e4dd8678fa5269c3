// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package azure

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/results"
)

// well known key of the storage emulator
const emulatorAccountKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

type uploadedBlob struct {
	path        string
	blobType    string
	contentType string
	device      string
	body        []byte
}

func TestNewBlobDestination(t *testing.T) {
	t.Run("missing env", func(t *testing.T) {
		dest, err := NewBlobDestination()
		require.ErrorIs(t, err, ErrAzureDestination)
		require.ErrorIs(t, err, ErrInvalidEnvVariable)
		assert.Nil(t, dest)
	})

	t.Run("valid env", func(t *testing.T) {
		t.Setenv("EXPORT_BLOB_ACCOUNT_NAME", "account")
		t.Setenv("EXPORT_BLOB_CONTAINER", "snapshots")

		dest, err := NewBlobDestination()
		require.NoError(t, err)
		blobDestination, ok := dest.(*blobDestination)
		require.True(t, ok)
		assert.Equal(t, "snapshots", blobDestination.ContainerName)
	})
}

func TestBlobName(t *testing.T) {
	t.Parallel()

	data := &destination.Data{
		Device: "garage",
		Time:   time.Date(2024, time.March, 1, 10, 30, 0, 123456000, time.FixedZone("CET", 3600)),
	}
	assert.Equal(t, "garage/20240301T093000.123456Z.json", BlobName(data))
}

func TestBlobSendData(t *testing.T) {
	var lock sync.Mutex
	uploads := make([]uploadedBlob, 0)

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		lock.Lock()
		uploads = append(uploads, uploadedBlob{
			path:        r.URL.Path,
			blobType:    r.Header.Get("x-ms-blob-type"),
			contentType: r.Header.Get("x-ms-blob-content-type"),
			device:      r.Header.Get("x-ms-meta-device"),
			body:        body,
		})
		lock.Unlock()

		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer testServer.Close()

	t.Setenv("EXPORT_BLOB_CONNECTION_STRING", "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey="+emulatorAccountKey+";BlobEndpoint="+testServer.URL+"/devstoreaccount1;")
	t.Setenv("EXPORT_BLOB_CONTAINER", "snapshots")

	dest, err := NewBlobDestination()
	require.NoError(t, err)

	snapshotTime := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	payload := results.New().WithEntries(results.NewScalar("relay0", results.OkState(), true))
	payload.Timestamp = snapshotTime

	require.NoError(t, dest.SendData(t.Context(), &destination.Data{
		ID:      "id-1",
		Device:  "garage",
		Kind:    "shelly1",
		Time:    snapshotTime,
		Payload: payload,
	}))

	lock.Lock()
	defer lock.Unlock()
	require.Len(t, uploads, 1)
	assert.Equal(t, "/devstoreaccount1/snapshots/garage/20240301T103000.000000Z.json", uploads[0].path)
	assert.Equal(t, "BlockBlob", uploads[0].blobType)
	assert.Equal(t, "application/json", uploads[0].contentType)
	assert.Equal(t, "garage", uploads[0].device)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(uploads[0].body, &decoded))
	assert.Equal(t, "id-1", decoded["id"])
	assert.Equal(t, "garage", decoded["device"])
}
