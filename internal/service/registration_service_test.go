package service

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

// testJPEG renders a small valid JPEG for upload tests.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// newTestRegistrationService wires the service against a stub backend and
// the canned geo directory.
func newTestRegistrationService(t *testing.T, backend http.Handler) (*RegistrationService, *fakeDirectory) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	dir := newTestDirectory()
	client := portal.NewClient(srv.URL)
	svc := NewRegistrationService(
		NewSessionStore(),
		NewImageService(),
		NewScanService(client),
		NewResolverService(dir),
		client,
	)
	return svc, dir
}

func scanBackend(fields map[string]string, confidence map[string]float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ocr-dual" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fields":     fields,
			"confidence": confidence,
			"raw_front":  "",
		})
	})
}

func TestAttachImageRejectedWithoutDocumentType(t *testing.T) {
	var requests atomic.Int64
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.AttachImage(sess.ID, SideFront, testJPEG(t, 100, 100))
	require.ErrorIs(t, err, utils.ErrNoDocumentType)

	// The attachment was discarded and nothing went over the wire.
	current, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, current.FrontImage)
	assert.Zero(t, requests.Load())
}

func TestScanAutoFillsAndResolvesAddress(t *testing.T) {
	svc, dir := newTestRegistrationService(t, scanBackend(
		map[string]string{"first_name": "Juan", "city": "Caloocan", "barangay": "174"},
		map[string]float64{"first_name": 0.9},
	))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SetDocumentType(sess.ID, models.DocTypeDriversLicense)
	require.NoError(t, err)
	_, err = svc.AttachImage(sess.ID, SideFront, testJPEG(t, 100, 100))
	require.NoError(t, err)

	result, err := svc.Scan(context.Background(), sess.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StateReview, result.State)
	assert.Equal(t, "Juan", result.Form.Personal.FirstName)
	assert.True(t, result.OCR.AutoFilled["first_name"])
	assert.False(t, result.OCR.AutoFilled["city"]) // populated but no confidence

	// "Caloocan" resolved under NCR, and the barangay query "174" matched.
	assert.Equal(t, models.RegionCodeNCR, result.Form.Address.RegionCode)
	assert.Equal(t, "1380300000", result.Form.Address.CityCode)
	assert.Equal(t, "Barangay 174", result.Form.Address.Barangay)
	assert.Contains(t, dir.calls, "region-cities:"+models.RegionCodeNCR)
	assert.Contains(t, dir.calls, "barangays:1380300000")
}

func TestRescanDiscardsPriorExtraction(t *testing.T) {
	responses := []map[string]string{
		{"first_name": "Juan", "middle_name": "Santos"},
		{"first_name": "Maria"},
	}
	confidences := []map[string]float64{
		{"first_name": 0.9, "middle_name": 0.8},
		{"first_name": 0.7},
	}
	var call atomic.Int64
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := call.Add(1) - 1
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fields":     responses[i],
			"confidence": confidences[i],
			"raw_front":  "",
		})
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SetDocumentType(sess.ID, models.DocTypePhilHealth)
	require.NoError(t, err)
	front := testJPEG(t, 100, 100)
	_, err = svc.AttachImage(sess.ID, SideFront, front)
	require.NoError(t, err)

	first, err := svc.Scan(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, "Santos", first.Form.Personal.MiddleName)

	second, err := svc.Scan(context.Background(), sess.ID)
	require.NoError(t, err)

	// No stale field or confidence from the first scan survives.
	assert.Equal(t, "Maria", second.Form.Personal.FirstName)
	assert.Empty(t, second.Form.Personal.MiddleName)
	assert.NotContains(t, second.OCR.Fields, "middle_name")
	assert.NotContains(t, second.OCR.Confidence, "middle_name")
	assert.False(t, second.OCR.AutoFilled["middle_name"])

	// The uploaded image survived both scans.
	assert.NotEmpty(t, second.FrontImage)
}

func TestConcurrentEditAndPollSerialize(t *testing.T) {
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SkipScan(sess.ID)
	require.NoError(t, err)

	// One goroutine keeps editing the form while the main goroutine polls
	// and marshals the session, as a browser does during a scan. Reads get
	// snapshots, so no poll may observe a half-applied edit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if _, err := svc.UpdateFields(sess.ID, map[string]string{"first_name": "Juan"}); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		cur, err := svc.GetSession(sess.ID)
		require.NoError(t, err)
		_, err = json.Marshal(cur)
		require.NoError(t, err)
	}
	<-done
}

func TestScanSendsDeclaredType(t *testing.T) {
	types := make(chan string, 1)
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		types <- r.FormValue("id_type")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fields":     map[string]string{},
			"confidence": map[string]float64{},
			"raw_front":  "",
		})
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SetDocumentType(sess.ID, models.DocTypeDriversLicense)
	require.NoError(t, err)
	_, err = svc.AttachImage(sess.ID, SideFront, testJPEG(t, 100, 100))
	require.NoError(t, err)

	_, err = svc.Scan(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.DocTypeDriversLicense), <-types)
}

// fillValidForm populates every required field with passing values.
func fillValidForm(t *testing.T, svc *RegistrationService, id string) {
	t.Helper()
	_, err := svc.UpdateFields(id, map[string]string{
		"first_name":       "Juan",
		"last_name":        "Dela Cruz",
		"email":            "juan@gmail.com",
		"dob":              "1990-01-15",
		"gender":           "Male",
		"phone":            "09171234567",
		"region":           "National Capital Region (NCR)",
		"province":         "N/A",
		"city":             "Caloocan City",
		"barangay":         "Barangay 174",
		"password":         "Password123!",
		"confirm_password": "Password123!",
	})
	require.NoError(t, err)
}

func TestSubmitBlockedOnShortPhone(t *testing.T) {
	var requests atomic.Int64
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SkipScan(sess.ID)
	require.NoError(t, err)
	fillValidForm(t, svc, sess.ID)

	// One digit short of the canonical pattern.
	_, err = svc.UpdateFields(sess.ID, map[string]string{"phone": "+6391234567"})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), sess.ID)
	require.ErrorIs(t, err, utils.ErrValidation)

	current, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, current.Form.Errors["phone"])
	assert.Equal(t, models.StateReview, current.State)
	assert.Zero(t, requests.Load(), "no network call may be made on a validation failure")
}

func TestSubmitSuccessResetsAllButImages(t *testing.T) {
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/register" {
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok"})
			return
		}
		http.NotFound(w, r)
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SetDocumentType(sess.ID, models.DocTypeNationalID)
	require.NoError(t, err)
	front := testJPEG(t, 100, 100)
	_, err = svc.AttachImage(sess.ID, SideFront, front)
	require.NoError(t, err)
	_, err = svc.SkipScan(sess.ID)
	require.NoError(t, err)
	fillValidForm(t, svc, sess.ID)

	snapshot, err := svc.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateDone, snapshot.State)

	// The live session is blank again, except for the uploaded images.
	current, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateUpload, current.State)
	assert.Empty(t, current.Form.Personal.FirstName)
	assert.Empty(t, current.Form.Creds.Password)
	assert.Empty(t, current.DeclaredType)
	assert.NotEmpty(t, current.FrontImage)
}

func TestSubmitServerEmailErrorFlagsEmailField(t *testing.T) {
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Email already registered"})
	}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SkipScan(sess.ID)
	require.NoError(t, err)
	fillValidForm(t, svc, sess.ID)

	_, err = svc.Submit(context.Background(), sess.ID)
	require.Error(t, err)

	current, gerr := svc.GetSession(sess.ID)
	require.NoError(t, gerr)
	assert.Equal(t, models.StateReview, current.State)
	assert.True(t, current.Form.Errors["email"])
}

func TestUpdateFieldsNormalizesPhoneAndClearsFlag(t *testing.T) {
	svc, _ := newTestRegistrationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	sess, err := svc.CreateSession()
	require.NoError(t, err)
	_, err = svc.SkipScan(sess.ID)
	require.NoError(t, err)
	fillValidForm(t, svc, sess.ID)

	// Break the phone, fail a submit, then fix it; the flag clears on the
	// fixing edit without another submit.
	_, err = svc.UpdateFields(sess.ID, map[string]string{"phone": "+639"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), sess.ID)
	require.ErrorIs(t, err, utils.ErrValidation)

	updated, err := svc.UpdateFields(sess.ID, map[string]string{"phone": "09171234567"})
	require.NoError(t, err)
	assert.Equal(t, "+639171234567", updated.Form.Personal.Contact)
	assert.False(t, updated.Form.Errors["phone"])
}
