package rating

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/http/middleware"
)

type clé struct {
	client  uuid.UUID
	service uuid.UUID
}

// memRepo reproduit le comportement de la contrainte UNIQUE.
type memRepo struct {
	avis map[clé]*Rating
}

func newMemRepo() *memRepo {
	return &memRepo{avis: map[clé]*Rating{}}
}

func (m *memRepo) Create(_ context.Context, input CreateRatingInput) (*Rating, error) {
	k := clé{client: input.ClientID, service: input.ServiceID}
	if _, exists := m.avis[k]; exists {
		return nil, ErrDuplicateRating
	}
	rt := &Rating{
		ID:          uuid.New(),
		ServiceID:   input.ServiceID,
		ClientID:    input.ClientID,
		Note:        input.Note,
		Commentaire: input.Commentaire,
	}
	m.avis[k] = rt
	return rt, nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*Rating, error) {
	for _, rt := range m.avis {
		if rt.ID == id {
			return rt, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Exists(_ context.Context, clientID, serviceID uuid.UUID) (bool, error) {
	_, ok := m.avis[clé{client: clientID, service: serviceID}]
	return ok, nil
}

func (m *memRepo) ListByService(_ context.Context, serviceID uuid.UUID) ([]Rating, error) {
	var out []Rating
	for _, rt := range m.avis {
		if rt.ServiceID == serviceID {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func (m *memRepo) Summarize(_ context.Context, serviceID uuid.UUID) (*Summary, error) {
	s := Summary{ServiceID: serviceID}
	for _, rt := range m.avis {
		if rt.ServiceID == serviceID {
			s.Moyenne += float64(rt.Note)
			s.Total++
		}
	}
	if s.Total > 0 {
		s.Moyenne /= float64(s.Total)
	}
	return &s, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	for k, rt := range m.avis {
		if rt.ID == id {
			delete(m.avis, k)
			return nil
		}
	}
	return ErrNotFound
}

func TestCreateRejectsOutOfRangeScore(t *testing.T) {
	svc := NewService(newMemRepo())

	for _, note := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), CreateRatingInput{
			ServiceID: uuid.New(),
			ClientID:  uuid.New(),
			Note:      note,
		})
		assert.ErrorIs(t, err, ErrInvalidScore, "note %d", note)
	}
}

func TestCreateSecondRatingIsRejected(t *testing.T) {
	svc := NewService(newMemRepo())
	clientID, serviceID := uuid.New(), uuid.New()

	_, err := svc.Create(context.Background(), CreateRatingInput{
		ServiceID: serviceID, ClientID: clientID, Note: 5,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRatingInput{
		ServiceID: serviceID, ClientID: clientID, Note: 3,
	})
	assert.ErrorIs(t, err, ErrDuplicateRating)

	// Le même client peut noter un autre service.
	_, err = svc.Create(context.Background(), CreateRatingInput{
		ServiceID: uuid.New(), ClientID: clientID, Note: 4,
	})
	assert.NoError(t, err)
}

func TestHandleCreateDuplicateReturnsConflict(t *testing.T) {
	jwtManager := auth.NewJWTManager("clef-de-test-suffisamment-longue-0001", time.Minute)
	clientID := uuid.New().String()
	token, _, err := jwtManager.GenerateAccessToken(clientID, "client", []string{"CLIENT"})
	require.NoError(t, err)

	handler := NewHandler(NewService(newMemRepo()))
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtManager))
		handler.RegisterClientRoutes(r)
	})

	serviceID := uuid.New().String()
	post := func() *httptest.ResponseRecorder {
		body := `{"service_id":"` + serviceID + `","note":5,"commentaire":"très bien"}`
		req := httptest.NewRequest(http.MethodPost, "/avis", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	require.Equal(t, http.StatusCreated, first.Code)

	second := post()
	assert.Equal(t, http.StatusConflict, second.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &envelope))
	assert.Equal(t, "DUPLICATE_RATING", envelope.Error.Code)
}
