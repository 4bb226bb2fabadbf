package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"petmatch/internal/models"
	"petmatch/internal/repository"
	"petmatch/internal/service"
)

type upload struct {
	name        string
	contentType string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)

		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		part.Write([]byte("fake image content"))
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateLostPostHandler(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		files          []upload
		mockSetup      func(*MockPostService)
		expectedStatus int
	}{
		{
			name: "created with images",
			fields: map[string]string{
				"user_id":   "1",
				"animal_id": "9",
				"location":  "Central Park",
				"time":      "2024-05-01T10:00:00Z",
				"latitude":  "40.78",
				"longitude": "-73.97",
			},
			files: []upload{{"a.jpg", "image/jpeg"}, {"b.png", "image/png"}},
			mockSetup: func(s *MockPostService) {
				s.On("CreateLost", mock.Anything, mock.MatchedBy(func(req service.CreatePostRequest) bool {
					return req.UserID == 1 && req.AnimalID != nil && *req.AnimalID == 9 &&
						req.Location == "Central Park" &&
						req.Time.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) &&
						req.Latitude != nil && *req.Latitude == 40.78 &&
						len(req.Images) == 2 && req.Images[0].FileName == "a.jpg"
				})).Return(&models.Post{
					PostID: 100027,
					Type:   models.PostTypeLost,
					Images: []models.PostImage{{ImageID: 10002701, PostID: 100027, ImagePath: "lost/100027/10002701.jpg"}},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing user id",
			fields:         map[string]string{"location": "Central Park"},
			mockSetup:      func(s *MockPostService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing location",
			fields:         map[string]string{"user_id": "1"},
			mockSetup:      func(s *MockPostService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad latitude",
			fields:         map[string]string{"user_id": "1", "location": "x", "latitude": "123"},
			mockSetup:      func(s *MockPostService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported file type",
			fields:         map[string]string{"user_id": "1", "location": "x"},
			files:          []upload{{"notes.txt", "text/plain"}},
			mockSetup:      func(s *MockPostService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "too many images",
			fields: map[string]string{"user_id": "1", "location": "x"},
			files: []upload{
				{"1.jpg", "image/jpeg"}, {"2.jpg", "image/jpeg"}, {"3.jpg", "image/jpeg"},
				{"4.jpg", "image/jpeg"}, {"5.jpg", "image/jpeg"}, {"6.jpg", "image/jpeg"},
			},
			mockSetup:      func(s *MockPostService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown animal",
			fields: map[string]string{"user_id": "1", "animal_id": "404", "location": "x"},
			mockSetup: func(s *MockPostService) {
				s.On("CreateLost", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("animal 404: %w", repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := newRouter()
			tt.mockSetup(deps.posts)

			body, contentType := multipartBody(t, tt.fields, tt.files...)
			req := httptest.NewRequest(http.MethodPost, "/api/posts/lost", body)
			req.Header.Set("Content-Type", contentType)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
				assert.Equal(t, float64(100027), response["post_id"])
				assert.Equal(t, "lost", response["post_type"])
			}

			deps.posts.AssertExpectations(t)
		})
	}
}

func TestCreateFoundPostHandler(t *testing.T) {
	router, deps := newRouter()
	deps.posts.On("CreateFound", mock.Anything, mock.MatchedBy(func(req service.CreatePostRequest) bool {
		return req.UserID == 2 && req.AnimalID == nil && len(req.Images) == 1
	})).Return(&models.Post{PostID: 200005, Type: models.PostTypeFound}, nil)

	body, contentType := multipartBody(t,
		map[string]string{"user_id": "2", "animal_id": "9", "location": "Tiergarten"},
		upload{"cat.webp", "image/webp"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts/found", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, float64(200005), response["post_id"])
	assert.Equal(t, []interface{}{}, response["images"])
	deps.posts.AssertExpectations(t)
}

func TestGetPostHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(*MockPostService)
		expectedStatus int
	}{
		{
			name: "found post",
			url:  "/api/posts/found/200005",
			mockSetup: func(s *MockPostService) {
				s.On("GetPost", mock.Anything, int64(200005), models.PostTypeFound).
					Return(&models.Post{PostID: 200005, Type: models.PostTypeFound, Location: "Tiergarten"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing",
			url:  "/api/posts/lost/100001",
			mockSetup: func(s *MockPostService) {
				s.On("GetPost", mock.Anything, int64(100001), models.PostTypeLost).
					Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			url:  "/api/posts/lost/100002",
			mockSetup: func(s *MockPostService) {
				s.On("GetPost", mock.Anything, int64(100002), models.PostTypeLost).
					Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := newRouter()
			tt.mockSetup(deps.posts)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			deps.posts.AssertExpectations(t)
		})
	}
}

func TestDeletePostHandler(t *testing.T) {
	router, deps := newRouter()
	deps.posts.On("DeleteLost", mock.Anything, int64(100027)).Return(nil).Once()
	deps.posts.On("DeleteFound", mock.Anything, int64(200005)).Return(repository.ErrNotFound).Once()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/posts/lost/100027", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/posts/found/200005", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	deps.posts.AssertExpectations(t)
}
