package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/detector"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/pipeline"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// testEnv bundles a pipeline service with its in-memory stores.
type testEnv struct {
	service     *pipeline.Service
	stub        *detector.Stub
	identities  *mock.MockIdentityStore
	descriptors *mock.MockDescriptorStore
	attendance  *mock.MockAttendanceStore
	gallery     *gallery.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stub := detector.NewStub()
	descriptors := mock.NewMockDescriptorStore()
	identities := mock.NewMockIdentityStore(descriptors)
	attendance := mock.NewMockAttendanceStore(identities)
	manager := gallery.NewManager(identities, descriptors)

	service, err := pipeline.NewService(pipeline.Config{
		Detector:    stub,
		Gallery:     manager,
		Identities:  identities,
		Descriptors: descriptors,
		Attendance:  attendance,
	})
	if err != nil {
		t.Fatalf("failed to create pipeline service: %v", err)
	}

	return &testEnv{
		service:     service,
		stub:        stub,
		identities:  identities,
		descriptors: descriptors,
		attendance:  attendance,
		gallery:     manager,
	}
}

// goodDetection builds a detection that passes every enrollment gate.
func goodDetection(lead float32) recognition.Detection {
	d := make(recognition.Descriptor, recognition.DescriptorDim)
	d[0] = lead
	return recognition.Detection{
		BBox:         []float64{0, 0, 200, 200},
		HasLandmarks: true,
		Expressions:  &recognition.Expressions{Neutral: 0.9, Happy: 0.05},
		DetScore:     0.95,
		Descriptor:   d,
	}
}

// enrollIdentity drives a full enrollment through the pipeline service.
func enrollIdentity(t *testing.T, env *testEnv, name string, lead float32) {
	t.Helper()
	ctx := context.Background()
	if err := env.service.BeginEnrollment(ctx, name); err != nil {
		t.Fatalf("begin enrollment failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		env.stub.Queue([]recognition.Detection{goodDetection(lead)}, nil)
		if _, _, err := env.service.SubmitEnrollmentFrame(ctx, []byte("frame")); err != nil {
			t.Fatalf("submit sample failed: %v", err)
		}
	}
	if _, err := env.service.CompleteEnrollment(ctx); err != nil {
		t.Fatalf("complete enrollment failed: %v", err)
	}
}

// jsonRequest creates a request with a JSON body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// frameRequest creates a multipart request carrying one camera frame
func frameRequest(t *testing.T, path string, frame []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("frame", "frame.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(frame); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}
