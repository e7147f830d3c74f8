package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/inmemory"
	"github.com/papercomputeco/relay/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.DescribeDriver(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("returns copies that callers cannot mutate", func() {
		d := inmemory.NewDriver()
		ctx := context.Background()
		Expect(d.Put(ctx, storagetest.NewTranscript("t1", "google", 0))).To(Succeed())

		got, err := d.Get(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		got.Model = "changed"

		again, err := d.Get(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Model).To(Equal("test-model"))
	})
})
