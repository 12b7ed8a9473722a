package postgres_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"everypoll/src/infra/postgres"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ = Describe("error classification", func() {
	DescribeTable("IsTransient",
		func(err error, expected bool) {
			Expect(postgres.IsTransient(err)).To(Equal(expected))
		},
		Entry("nil", nil, false),
		Entry("serialization failure", &pgconn.PgError{Code: "40001"}, true),
		Entry("deadlock", &pgconn.PgError{Code: "40P01"}, true),
		Entry("admin shutdown", &pgconn.PgError{Code: "57P01"}, true),
		Entry("too many connections", &pgconn.PgError{Code: "53300"}, true),
		Entry("connection failure class", &pgconn.PgError{Code: "08006"}, true),
		Entry("unique violation", &pgconn.PgError{Code: "23505"}, false),
		Entry("caller deadline outside pgconn", fmt.Errorf("query: %w", context.DeadlineExceeded), false),
		Entry("plain error", errors.New("boom"), false),
	)

	It("recognises constraint violations through wrapping", func() {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})

		Expect(postgres.IsForeignKeyViolation(err)).To(BeTrue())
		Expect(postgres.IsCheckViolation(err)).To(BeFalse())
		Expect(postgres.IsCheckViolation(&pgconn.PgError{Code: "23514"})).To(BeTrue())
	})

	It("recognises no rows", func() {
		Expect(postgres.IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows))).To(BeTrue())
		Expect(postgres.IsNoRows(errors.New("boom"))).To(BeFalse())
	})
})

var _ = Describe("EscapeLike", func() {
	It("escapes the LIKE wildcards and the escape character", func() {
		Expect(postgres.EscapeLike(`100%_off\`)).To(Equal(`100\%\_off\\`))
		Expect(postgres.EscapeLike("tea")).To(Equal("tea"))
	})
})

var _ = Describe("NewNullString", func() {
	It("maps empty values to NULL", func() {
		empty := ""
		Expect(postgres.NewNullString(nil).Status).To(Equal(pgtype.Null))
		Expect(postgres.NewNullString(&empty).Status).To(Equal(pgtype.Null))

		description := "breakfast"
		Expect(postgres.NewNullString(&description)).To(Equal(pgtype.Text{String: "breakfast", Status: pgtype.Present}))
	})
})
