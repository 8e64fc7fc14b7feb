package transport_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BaseHandler errors", func() {
	var base *transport.BaseHandler

	BeforeEach(func() {
		base = transport.NewBaseHandler(logger.Discard())
	})

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	It("writes a string code for a plain 500", func() {
		rec := httptest.NewRecorder()
		base.WriteError(rec, http.StatusInternalServerError, "internal server error")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		body := decode(rec)
		Expect(body["code"]).To(Equal(string(internal.ErrCodeInternal)))
		Expect(body["message"]).To(Equal("internal server error"))
	})

	It("names the status for plain client errors", func() {
		rec := httptest.NewRecorder()
		base.WriteError(rec, http.StatusBadRequest, "bad input")

		Expect(decode(rec)["code"]).To(Equal("BAD_REQUEST"))
	})

	It("uses the same code field shape as an app error", func() {
		appRec := httptest.NewRecorder()
		base.HandleServiceError(appRec, internal.ErrUnauthorizedAccess)
		Expect(appRec.Code).To(Equal(http.StatusForbidden))
		Expect(decode(appRec)["code"]).To(BeAssignableToTypeOf(""))

		plainRec := httptest.NewRecorder()
		base.HandleServiceError(plainRec, errors.New("connection refused to db"))
		Expect(plainRec.Code).To(Equal(http.StatusInternalServerError))
		plain := decode(plainRec)
		Expect(plain["code"]).To(Equal(string(internal.ErrCodeInternal)))
		Expect(plainRec.Body.String()).NotTo(ContainSubstring("connection refused"))
	})
})
