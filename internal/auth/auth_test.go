package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/helixkit/userstore/internal/auth"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Suite")
}

var _ = ginkgo.Describe("TokenService", func() {
	var (
		svc        *auth.TokenService
		userUUID   uuid.UUID
		personUUID uuid.UUID
	)

	ginkgo.BeforeEach(func() {
		svc = auth.NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour)
		userUUID = uuid.New()
		personUUID = uuid.New()
	})

	ginkgo.It("should issue a validatable access token", func() {
		access, refresh, err := svc.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(access).ToNot(gomega.BeEmpty())
		gomega.Expect(refresh).ToNot(gomega.BeEmpty())

		gomega.Expect(svc.ValidateAccessToken(access)).To(gomega.Succeed())
	})

	ginkgo.It("should sign access and refresh tokens with distinct secrets", func() {
		access, refresh, err := svc.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(access).ToNot(gomega.Equal(refresh))

		// a refresh token must not pass as an access token
		gomega.Expect(svc.ValidateAccessToken(refresh)).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("should reissue a working pair from a refresh token", func() {
		_, refresh, err := svc.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		newAccess, newRefresh, err := svc.RefreshTokens(refresh)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(svc.ValidateAccessToken(newAccess)).To(gomega.Succeed())
		gomega.Expect(newRefresh).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should reject an access token used as a refresh token", func() {
		access, _, err := svc.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, _, err = svc.RefreshTokens(access)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("should reject an expired access token", func() {
		expired := auth.NewTokenService("access-secret", "refresh-secret", -time.Minute, time.Hour)
		access, _, err := expired.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(expired.ValidateAccessToken(access)).To(gomega.MatchError(auth.ErrTokenExpired))
	})

	ginkgo.It("should reject a token signed with a different secret", func() {
		other := auth.NewTokenService("other-secret", "refresh-secret", time.Minute, time.Hour)
		access, _, err := other.IssueTokens("ada", userUUID, personUUID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(svc.ValidateAccessToken(access)).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("should reject garbage input", func() {
		gomega.Expect(svc.ValidateAccessToken("not.a.jwt")).To(gomega.MatchError(auth.ErrInvalidToken))
	})
})
