package userstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubTokenIssuer struct {
	issueErr error
}

func (s *stubTokenIssuer) IssueTokens(login string, userUUID, personUUID uuid.UUID) (string, string, error) {
	if s.issueErr != nil {
		return "", "", s.issueErr
	}
	return "access-" + login, "refresh-" + login, nil
}

func (s *stubTokenIssuer) RefreshTokens(refreshToken string) (string, string, error) {
	if refreshToken != "refresh-valid" {
		return "", "", errors.New("invalid refresh token")
	}
	return "access-new", "refresh-new", nil
}

func (s *stubTokenIssuer) ValidateAccessToken(token string) error {
	if token != "valid-token" {
		return errors.New("invalid token")
	}
	return nil
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		storage *memStorage
		service *Service
		issuer  *stubTokenIssuer
		handler *Handler
		router  *chi.Mux
	)

	ginkgo.BeforeEach(func() {
		storage = newMemStorage()
		service = NewService(storage, nil)
		issuer = &stubTokenIssuer{}
		handler = NewHandler(service, issuer)

		router = chi.NewRouter()
		router.Post("/login", handler.Login)
		router.Put("/login", handler.RefreshToken)
		router.Route("/persons", func(r chi.Router) {
			r.Get("/", handler.GetAllPersons)
			r.Post("/", handler.CreatePerson)
			r.Put("/", handler.UpdatePerson)
			r.Get("/{uuid}", handler.GetPerson)
			r.Delete("/{uuid}", handler.DeletePerson)
		})
		router.Route("/users", func(r chi.Router) {
			r.Get("/", handler.GetAllUsers)
			r.Post("/", handler.CreateUser)
			r.Put("/", handler.UpdateUser)
			r.Get("/{uuid}", handler.GetUser)
			r.Delete("/{uuid}", handler.DeleteUser)
		})
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	seedAda := func() (Person, AppUser) {
		person, err := service.CreatePerson(context.Background(), Person{
			Firstname: "Ada", Lastname: "Lovelace", Email: "ada@x.io", Phone: "000",
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		user, err := service.CreateUser(context.Background(), AppUser{
			Login: "ada", Password: "secret", Person: person,
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return person, user
	}

	ginkgo.Describe("POST /login", func() {
		ginkgo.It("should return a token pair for valid credentials", func() {
			seedAda()

			rec := do(http.MethodPost, "/login", LoginDTO{Login: "ada", Password: "secret"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var pair TokenPair
			gomega.Expect(json.NewDecoder(rec.Body).Decode(&pair)).To(gomega.Succeed())
			gomega.Expect(pair.AccessToken).To(gomega.Equal("access-ada"))
			gomega.Expect(pair.RefreshToken).To(gomega.Equal("refresh-ada"))
		})

		ginkgo.It("should return 401 for invalid credentials", func() {
			seedAda()

			rec := do(http.MethodPost, "/login", LoginDTO{Login: "ada", Password: "wrong"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should return 400 when fields are missing", func() {
			rec := do(http.MethodPost, "/login", LoginDTO{Login: "ada"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 500 when token issuance fails", func() {
			seedAda()
			issuer.issueErr = errors.New("signer broken")

			rec := do(http.MethodPost, "/login", LoginDTO{Login: "ada", Password: "secret"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		})
	})

	ginkgo.Describe("PUT /login", func() {
		ginkgo.It("should reissue tokens for a valid refresh token", func() {
			rec := do(http.MethodPut, "/login", RefreshTokenDTO{RefreshToken: "refresh-valid"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should return 401 for an invalid refresh token", func() {
			rec := do(http.MethodPut, "/login", RefreshTokenDTO{RefreshToken: "bogus"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("persons", func() {
		ginkgo.It("should create a person and return 201 with generated identity", func() {
			rec := do(http.MethodPost, "/persons/", Person{
				Firstname: "Ada", Lastname: "Lovelace", Email: "ada@x.io", Phone: "000",
			})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))

			var created Person
			gomega.Expect(json.NewDecoder(rec.Body).Decode(&created)).To(gomega.Succeed())
			gomega.Expect(created.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(created.UUID).ToNot(gomega.Equal(uuid.Nil))
		})

		ginkgo.It("should return 400 for an incomplete payload", func() {
			rec := do(http.MethodPost, "/persons/", Person{Firstname: "Ada"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 404 for an unknown uuid", func() {
			rec := do(http.MethodGet, "/persons/"+uuid.NewString(), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should return 400 for a malformed uuid", func() {
			rec := do(http.MethodGet, "/persons/not-a-uuid", nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 409 when deleting a person still referenced by a user", func() {
			person, _ := seedAda()

			rec := do(http.MethodDelete, "/persons/"+person.UUID.String(), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})

		ginkgo.It("should return 204 when deleting an unreferenced person", func() {
			person, err := service.CreatePerson(context.Background(), Person{
				Firstname: "Solo", Lastname: "Person", Email: "solo@x.io", Phone: "9",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := do(http.MethodDelete, "/persons/"+person.UUID.String(), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		})
	})

	ginkgo.Describe("users", func() {
		ginkgo.It("should create a user and never echo the password", func() {
			person, err := service.CreatePerson(context.Background(), Person{
				Firstname: "Ada", Lastname: "Lovelace", Email: "ada@x.io", Phone: "000",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := do(http.MethodPost, "/users/", AppUser{
				Login: "ada", Password: "secret", Person: person,
			})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring(`"password":"secret"`))
		})

		ginkgo.It("should return 400 when the person id is missing", func() {
			rec := do(http.MethodPost, "/users/", AppUser{Login: "ada", Password: "secret"})
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should fetch a user by uuid", func() {
			_, user := seedAda()

			rec := do(http.MethodGet, "/users/"+user.UUID.String(), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var fetched AppUser
			gomega.Expect(json.NewDecoder(rec.Body).Decode(&fetched)).To(gomega.Succeed())
			gomega.Expect(fetched.Login).To(gomega.Equal("ada"))
			gomega.Expect(fetched.Password).To(gomega.BeEmpty())
		})

		ginkgo.It("should return 404 deleting an unknown user", func() {
			rec := do(http.MethodDelete, "/users/"+uuid.NewString(), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var protected *chi.Mux

		ginkgo.BeforeEach(func() {
			protected = chi.NewRouter()
			protected.Group(func(r chi.Router) {
				r.Use(handler.AuthMiddleware)
				r.Get("/persons", handler.GetAllPersons)
			})
		})

		ginkgo.It("should reject requests without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/persons", nil)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should reject requests with an invalid token", func() {
			req := httptest.NewRequest(http.MethodGet, "/persons", nil)
			req.Header.Set("Authorization", "Bearer bogus")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should pass requests with a valid token", func() {
			req := httptest.NewRequest(http.MethodGet, "/persons", nil)
			req.Header.Set("Authorization", "Bearer valid-token")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})
	})
})

var _ = ginkgo.Describe("DTO validation", func() {
	ginkgo.It("should require every person field", func() {
		p := Person{Firstname: "A", Lastname: "B", Email: "a@b.c", Phone: "1"}
		gomega.Expect(p.Validate()).To(gomega.Succeed())

		for _, mutate := range []func(*Person){
			func(p *Person) { p.Firstname = "" },
			func(p *Person) { p.Lastname = "" },
			func(p *Person) { p.Email = "" },
			func(p *Person) { p.Phone = "" },
		} {
			broken := p
			mutate(&broken)
			err := broken.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(strings.HasSuffix(err.Error(), "is required")).To(gomega.BeTrue())
		}
	})

	ginkgo.It("should require login, password and person id on user create", func() {
		u := AppUser{Login: "ada", Password: "pw", Person: Person{ID: 1}}
		gomega.Expect(u.ValidateForCreate()).To(gomega.Succeed())

		gomega.Expect(AppUser{Password: "pw", Person: Person{ID: 1}}.ValidateForCreate()).To(gomega.HaveOccurred())
		gomega.Expect(AppUser{Login: "ada", Person: Person{ID: 1}}.ValidateForCreate()).To(gomega.HaveOccurred())
		gomega.Expect(AppUser{Login: "ada", Password: "pw"}.ValidateForCreate()).To(gomega.HaveOccurred())
	})
})
