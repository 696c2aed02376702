package services

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKubo answers add with a fixed hash and cat with the last added body.
func fakeKubo(t *testing.T) (*httptest.Server, *[]byte) {
	t.Helper()
	var stored []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/add", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		name := "QmTestHash"
		// An empty filename makes net/http treat the part as a plain value.
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			stored, _ = io.ReadAll(file)
			name = header.Filename
		} else {
			stored = []byte(r.FormValue("file"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"Name": name, "Hash": "QmTestHash", "Size": "12"})
	})
	mux.HandleFunc("/api/v0/cat", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("arg") != "QmTestHash" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"Message":"block was not found locally","Code":0,"Type":"error"}`))
			return
		}
		w.Write(stored)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &stored
}

func closedAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return "http://" + addr
}

func TestIPFSService_AddAndCat(t *testing.T) {
	server, stored := fakeKubo(t)
	s := NewIPFSService(server.URL, 5*time.Second)
	require.True(t, s.Enabled())

	res, err := s.Add(context.Background(), "model.onnx", strings.NewReader("weights"))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash", res.Hash)
	assert.Equal(t, "model.onnx", res.Path)
	assert.Equal(t, int64(12), res.Size)
	assert.Equal(t, "weights", string(*stored))

	data, err := s.Cat(context.Background(), "QmTestHash")
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data))
}

func TestIPFSService_AddUnnamedUsesHashAsPath(t *testing.T) {
	server, _ := fakeKubo(t)
	s := NewIPFSService(server.URL, 5*time.Second)

	res, err := s.Add(context.Background(), "", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash", res.Path)
}

func TestIPFSService_NodeError(t *testing.T) {
	server, _ := fakeKubo(t)
	s := NewIPFSService(server.URL, 5*time.Second)

	_, err := s.Cat(context.Background(), "QmMissing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIPFSUnavailable)
	assert.Contains(t, err.Error(), "block was not found locally")
}

func TestIPFSService_Unavailable(t *testing.T) {
	s := NewIPFSService(closedAddress(t), 5*time.Second)

	_, err := s.Add(context.Background(), "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrIPFSUnavailable)

	_, err = s.Cat(context.Background(), "QmTestHash")
	assert.ErrorIs(t, err, ErrIPFSUnavailable)
}

func TestIPFSService_Disabled(t *testing.T) {
	s := NewIPFSService("", time.Second)
	assert.False(t, s.Enabled())

	_, err := s.Add(context.Background(), "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrIPFSUnavailable)
}

func TestImageService_Generate(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"image":"data:image/png;base64,AAAA","model_type":"stable-diffusion"}`))
	}))
	defer server.Close()

	s := NewImageService(server.URL, 5*time.Second)
	zero := int64(0)
	out, err := s.Generate(context.Background(), GenerateImageRequest{Prompt: "a cat", Seed: &zero})
	require.NoError(t, err)

	assert.JSONEq(t, `{"image":"data:image/png;base64,AAAA","model_type":"stable-diffusion"}`, string(out))
	assert.Equal(t, map[string]interface{}{
		"prompt":              "a cat",
		"model_type":          "stable-diffusion",
		"width":               512.0,
		"height":              512.0,
		"num_inference_steps": 50.0,
		"guidance_scale":      7.5,
		"seed":                nil,
	}, received)
}

func TestImageService_GenerateKeepsCallerValues(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	seed := int64(7)
	_, err := NewImageService(server.URL, time.Second).Generate(context.Background(), GenerateImageRequest{
		Prompt: "dog", ModelType: "dall-e", Width: 1024, Height: 768, NumInferenceSteps: 20, GuidanceScale: 3, Seed: &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, "dall-e", received["model_type"])
	assert.Equal(t, 1024.0, received["width"])
	assert.Equal(t, 768.0, received["height"])
	assert.Equal(t, 7.0, received["seed"])
}

func TestImageService_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Stable Diffusion error: out of memory"}`))
	}))
	defer server.Close()

	_, err := NewImageService(server.URL, time.Second).Generate(context.Background(), GenerateImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrImageGeneration)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestImageService_Unreachable(t *testing.T) {
	_, err := NewImageService(closedAddress(t), time.Second).Generate(context.Background(), GenerateImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrImageGeneration)
}
