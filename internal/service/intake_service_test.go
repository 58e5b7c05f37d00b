package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shinyyama/reconnect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Size: int64(len(testutil.PNG)), Body: bytes.NewReader(testutil.PNG)}
}

func validInput() SubmitInput {
	return SubmitInput{
		Description: "Red wallet",
		ContactNo:   "+911234567890",
		Category:    "Wallet",
		City:        "Pune",
		Image:       pngUpload("wallet.png"),
	}
}

func newIntake() (IntakeService, *testutil.MemoryRepo, *testutil.MemoryStore, *testutil.RecordingPublisher) {
	repo := testutil.NewMemoryRepo()
	store := testutil.NewMemoryStore()
	pub := &testutil.RecordingPublisher{}
	return NewIntakeService(repo, store, pub), repo, store, pub
}

func TestSubmitCreatesOneRowAndOneFile(t *testing.T) {
	svc, repo, store, pub := newIntake()

	res, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ImagePath, "uploads/found_images/image-"))
	assert.True(t, strings.HasSuffix(res.ImagePath, ".png"))
	assert.Equal(t, []string{res.ImagePath}, store.Paths())

	items := repo.Items()
	require.Len(t, items, 1)
	assert.Equal(t, res.ImagePath, items[0].ImagePath)
	assert.Equal(t, "+911234567890", items[0].FinderContact)
	assert.Nil(t, items[0].Latitude)
	assert.Nil(t, items[0].Longitude)
	assert.Nil(t, items[0].LocationDesc)

	require.Len(t, pub.Events, 1)
	assert.Equal(t, items[0].ItemID, pub.Events[0].ItemID)
}

func TestSubmitMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"no image", func(in *SubmitInput) { in.Image = nil }},
		{"no description", func(in *SubmitInput) { in.Description = "" }},
		{"blank description", func(in *SubmitInput) { in.Description = "   " }},
		{"no contact", func(in *SubmitInput) { in.ContactNo = "" }},
		{"no category", func(in *SubmitInput) { in.Category = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store, _ := newIntake()
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, MsgMissingDetails, verr.Reason)
			assert.Empty(t, repo.Items())
			assert.Empty(t, store.Paths())
		})
	}
}

func TestSubmitCoordinates(t *testing.T) {
	svc, repo, _, _ := newIntake()
	in := validInput()
	in.Latitude = "18.5204"
	in.Longitude = " 73.8567 "
	in.LocationDesc = "Near the bus stand"

	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	it := repo.Items()[0]
	require.NotNil(t, it.Latitude)
	require.NotNil(t, it.Longitude)
	assert.InDelta(t, 18.5204, *it.Latitude, 1e-9)
	assert.InDelta(t, 73.8567, *it.Longitude, 1e-9)
	assert.Equal(t, "Near the bus stand", *it.LocationDesc)
}

func TestSubmitBadCoordinates(t *testing.T) {
	for _, tc := range []struct{ lat, lng string }{
		{"north", ""},
		{"91", ""},
		{"", "-180.5"},
		{"NaN", ""},
	} {
		svc, repo, store, _ := newIntake()
		in := validInput()
		in.Latitude, in.Longitude = tc.lat, tc.lng
		_, err := svc.Submit(context.Background(), in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "lat=%q lng=%q", tc.lat, tc.lng)
		assert.Empty(t, repo.Items())
		assert.Empty(t, store.Paths())
	}
}

func TestSubmitRejectsNonImage(t *testing.T) {
	svc, repo, store, _ := newIntake()
	in := validInput()
	in.Image = &Upload{Filename: "notes.txt", Body: strings.NewReader("just some text")}

	_, err := svc.Submit(context.Background(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgNotAnImage, verr.Reason)
	assert.Empty(t, repo.Items())
	assert.Empty(t, store.Paths())
}

func TestSubmitAcceptsHEIC(t *testing.T) {
	svc, repo, store, _ := newIntake()
	in := validInput()
	in.Image = &Upload{Filename: "IMG_0001.HEIC", ContentType: "image/heic", Size: int64(len(testutil.HEIC)), Body: bytes.NewReader(testutil.HEIC)}

	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.ImagePath, ".heic"), res.ImagePath)
	assert.Len(t, repo.Items(), 1)
	assert.Len(t, store.Paths(), 1)
}

func TestSubmitContactLength(t *testing.T) {
	svc, repo, store, _ := newIntake()
	in := validInput()
	in.ContactNo = strings.Repeat("9", MaxContactLen+1)

	_, err := svc.Submit(context.Background(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgContactTooLong, verr.Reason)
	assert.Empty(t, repo.Items())
	assert.Empty(t, store.Paths())

	in = validInput()
	in.ContactNo = "  " + strings.Repeat("9", MaxContactLen) + "  "
	_, err = svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, repo.Items(), 1)
	assert.Len(t, repo.Items()[0].FinderContact, MaxContactLen)
}

func TestSubmitInsertFailureRemovesFile(t *testing.T) {
	svc, repo, store, pub := newIntake()
	repo.CreateErr = errors.New("Duplicate entry")

	_, err := svc.Submit(context.Background(), validInput())
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, err.Error(), "Duplicate entry")

	assert.Empty(t, store.Paths(), "no orphaned media after a failed insert")
	assert.Len(t, store.Deleted, 1)
	assert.Empty(t, repo.Items())
	assert.Empty(t, pub.Events)
}

func TestSubmitSaveFailure(t *testing.T) {
	svc, repo, store, _ := newIntake()
	store.SaveErr = errors.New("disk full")

	_, err := svc.Submit(context.Background(), validInput())
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "save image", serr.Op)
	assert.Empty(t, repo.Items())
}

func TestSubmitPublishFailureDoesNotFail(t *testing.T) {
	svc, repo, _, pub := newIntake()
	pub.Err = errors.New("broker down")

	_, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, repo.Items(), 1)
}

func TestConcurrentIdenticalSubmissions(t *testing.T) {
	svc, repo, store, _ := newIntake()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), validInput())
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	items := repo.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ItemID, items[1].ItemID)
	assert.NotEqual(t, items[0].ImagePath, items[1].ImagePath)
	assert.Len(t, store.Paths(), 2)
}
