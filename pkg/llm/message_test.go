package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
)

var _ = Describe("Message", func() {
	Describe("UnmarshalJSON", func() {
		It("accepts string content as a single text block", func() {
			var m llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"user","content":"hi"}`), &m)).To(Succeed())
			Expect(m).To(Equal(llm.NewTextMessage("user", "hi")))
		})

		It("accepts block content", func() {
			var m llm.Message
			data := `{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"tool_use","tool_name":"lookup","tool_input":"{}"}]}`
			Expect(json.Unmarshal([]byte(data), &m)).To(Succeed())
			Expect(m.Content).To(HaveLen(2))
			Expect(m.Content[1].ToolName).To(Equal("lookup"))
			Expect(m.GetText()).To(Equal("a"))
		})

		It("leaves content empty when missing or null", func() {
			var m llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"user","content":null}`), &m)).To(Succeed())
			Expect(m.Content).To(BeEmpty())
		})

		It("rejects content of another shape", func() {
			var m llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"user","content":42}`), &m)).NotTo(Succeed())
		})
	})
})
