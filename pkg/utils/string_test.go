package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("does not split a multi-byte character", func() {
		// "é" is two bytes; a four byte cut would land inside the second one.
		Expect(Truncate("héé", 4)).To(Equal("hé..."))
	})
})

var _ = Describe("VersionInfo", func() {
	It("includes the build variables", func() {
		Expect(VersionInfo()).To(Equal("Version: dev\nSha: HEAD\nBuilt at: dev\n"))
	})
})
