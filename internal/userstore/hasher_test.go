package userstore

import (
	"fmt"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("DeriveAuthKey", func() {
	ginkgo.It("should be deterministic for identical inputs", func() {
		first := DeriveAuthKey("ada", "secret")
		second := DeriveAuthKey("ada", "secret")
		gomega.Expect(first).To(gomega.Equal(second))
	})

	ginkgo.It("should prefix the key with the login verbatim", func() {
		key := DeriveAuthKey("ada", "secret")
		gomega.Expect(key).To(gomega.HavePrefix("ada:"))
	})

	ginkgo.It("should render a lowercase 64-char hex digest", func() {
		key := DeriveAuthKey("ada", "secret")
		digest := strings.TrimPrefix(key, "ada:")
		gomega.Expect(digest).To(gomega.HaveLen(64))
		gomega.Expect(digest).To(gomega.MatchRegexp("^[0-9a-f]{64}$"))
	})

	ginkgo.It("should change when the password changes", func() {
		gomega.Expect(DeriveAuthKey("ada", "secret")).ToNot(gomega.Equal(DeriveAuthKey("ada", "Secret")))
	})

	ginkgo.It("should change when the login changes", func() {
		gomega.Expect(DeriveAuthKey("ada", "secret")).ToNot(gomega.Equal(DeriveAuthKey("adb", "secret")))
	})

	ginkgo.It("should never collide for distinct logins with the same password", func() {
		// structural: the login is prepended verbatim
		for i := 0; i < 50; i++ {
			login := fmt.Sprintf("user%02d", i)
			other := fmt.Sprintf("user%02d", i+1)
			gomega.Expect(DeriveAuthKey(login, "shared")).ToNot(gomega.Equal(DeriveAuthKey(other, "shared")))
		}
	})

	ginkgo.It("should produce unique keys across a corpus of credential pairs", func() {
		seen := map[string]struct{}{}
		for i := 0; i < 64; i++ {
			for j := 0; j < 16; j++ {
				key := DeriveAuthKey(fmt.Sprintf("login-%d", i), fmt.Sprintf("pass-%d", j))
				_, dup := seen[key]
				gomega.Expect(dup).To(gomega.BeFalse(), "duplicate key %s", key)
				seen[key] = struct{}{}
			}
		}
	})
})
