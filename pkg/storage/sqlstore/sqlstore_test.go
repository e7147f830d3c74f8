package sqlstore

import (
	"time"

	"entgo.io/ent/dialect"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

var _ = Describe("queries", func() {
	Context("for postgres", func() {
		s := &Store{dialect: dialect.Postgres}

		It("numbers placeholders in the list filter", func() {
			query, args := s.listQuery(storage.ListOptions{Provider: "openai", Limit: 5})
			Expect(query).To(ContainSubstring(`WHERE "provider" = $1`))
			Expect(query).To(ContainSubstring(`ORDER BY "started_at" DESC`))
			Expect(query).To(ContainSubstring("LIMIT 5"))
			Expect(args).To(Equal([]any{"openai"}))
		})

		It("upserts on the id column", func() {
			t := &llm.Transcript{ID: "t1", Provider: "anthropic", StartedAt: time.Unix(0, 42)}
			query, args := s.putQuery(t, "{}")
			Expect(query).To(HavePrefix(`INSERT INTO "transcripts"`))
			Expect(query).To(ContainSubstring("ON CONFLICT"))
			Expect(query).To(ContainSubstring("DO UPDATE SET"))
			Expect(query).To(ContainSubstring("$7"))
			Expect(args).To(HaveLen(7))
			Expect(args[6]).To(Equal(int64(42)))
		})
	})

	Context("for sqlite", func() {
		s := &Store{dialect: dialect.SQLite}

		It("uses question mark placeholders", func() {
			query, args := s.getQuery("t1")
			Expect(query).To(ContainSubstring("= ?"))
			Expect(query).NotTo(ContainSubstring("$1"))
			Expect(args).To(Equal([]any{"t1"}))
		})

		It("applies the default limit without a filter", func() {
			query, args := s.listQuery(storage.ListOptions{})
			Expect(query).NotTo(ContainSubstring("WHERE"))
			Expect(query).To(ContainSubstring("LIMIT 100"))
			Expect(args).To(BeEmpty())
		})
	})
})

var _ = Describe("Tables", func() {
	It("keys transcripts by id and indexes the start time", func() {
		Expect(Tables).To(HaveLen(1))
		t := Tables[0]
		Expect(t.Name).To(Equal("transcripts"))
		Expect(t.PrimaryKey).To(HaveLen(1))
		Expect(t.PrimaryKey[0].Name).To(Equal("id"))
		Expect(t.Indexes).To(HaveLen(2))
	})
})
