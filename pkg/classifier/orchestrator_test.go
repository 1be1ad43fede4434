package classifier

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

func TestOrchestrator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orchestrator Suite")
}

// fakeBackend is a scripted Classifier for orchestration tests.
type fakeBackend struct {
	name   string
	result *hazmat.Classification
	err    error
	// panicOn triggers a panic for one product name, for batch
	// isolation tests.
	panicOn string

	mu    sync.Mutex
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Classify(_ context.Context, _, productName string) (*hazmat.Classification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panicOn != "" && productName == f.panicOn {
		panic("scripted failure")
	}
	if f.err != nil {
		return nil, f.err
	}
	// Return a copy so the orchestrator's source re-tagging does not
	// leak between calls.
	c := *f.result
	return &c, nil
}

func scripted(name string, confidence float64, un string) *fakeBackend {
	return &fakeBackend{
		name: name,
		result: &hazmat.Classification{
			UNNumber:   hazmat.String(un),
			Confidence: confidence,
			Source:     hazmat.SourceCFRHMT,
		},
	}
}

var _ = Describe("Dual-backend orchestration", func() {
	var opts ClassifyOptions

	BeforeEach(func() {
		opts = ClassifyOptions{PreferDatabase: true, EnableTelemetry: true}
	})

	Context("when the primary succeeds with high confidence", func() {
		It("returns the primary result without consulting the secondary", func() {
			primary := scripted("database", 0.9, "UN1090")
			secondary := scripted("json", 0.95, "UN9999")
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			result := o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			Expect(*result.UNNumber).To(Equal("UN1090"))
			Expect(secondary.calls).To(BeZero())
			Expect(result.SearchMethod).To(Equal("database"))
		})
	})

	Context("when the primary returns low confidence", func() {
		It("keeps the secondary result when it scores higher", func() {
			primary := scripted("database", 0.2, "UN1111")
			secondary := scripted("json", 0.8, "UN2222")
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			result := o.Classify(context.Background(), "SKU-1", "Mystery Blend", opts)
			Expect(*result.UNNumber).To(Equal("UN2222"))
			Expect(result.Source).To(Equal(hazmat.SourceJSON))
			Expect(result.SearchMethod).To(Equal("json"))
		})

		It("keeps the primary result when the secondary scores lower, tagged hybrid", func() {
			primary := scripted("database", 0.2, "UN1111")
			secondary := scripted("json", 0.1, "UN2222")
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			result := o.Classify(context.Background(), "SKU-1", "Mystery Blend", opts)
			Expect(*result.UNNumber).To(Equal("UN1111"))
			Expect(result.Source).To(Equal(hazmat.SourceHybrid))
			Expect(result.SearchMethod).To(Equal("hybrid"))
			Expect(secondary.calls).To(Equal(1))
		})

		It("keeps the primary result when the secondary errors", func() {
			primary := scripted("database", 0.2, "UN1111")
			secondary := &fakeBackend{name: "json", err: fmt.Errorf("index corrupt")}
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			result := o.Classify(context.Background(), "SKU-1", "Mystery Blend", opts)
			Expect(*result.UNNumber).To(Equal("UN1111"))
		})
	})

	Context("when the primary fails", func() {
		It("falls back to the secondary", func() {
			primary := &fakeBackend{name: "database", err: fmt.Errorf("connection refused")}
			secondary := scripted("json", 0.85, "UN2222")
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			result := o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			Expect(*result.UNNumber).To(Equal("UN2222"))
			Expect(result.SearchMethod).To(Equal("json"))
		})

		It("returns the defined error result when both backends fail, without panicking", func() {
			primary := &fakeBackend{name: "database", err: fmt.Errorf("connection refused")}
			secondary := &fakeBackend{name: "json", err: fmt.Errorf("index corrupt")}
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			var result *hazmat.Classification
			Expect(func() {
				result = o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			}).NotTo(Panic())
			Expect(result.Source).To(Equal(hazmat.SourceError))
			Expect(result.Confidence).To(BeZero())
			Expect(result.UNNumber).To(BeNil())
		})
	})

	Context("when the database backend is not preferred", func() {
		It("uses the file-backed classifier directly with no fallback", func() {
			primary := scripted("database", 0.9, "UN1111")
			secondary := scripted("json", 0.7, "UN2222")
			o := NewOrchestratorFromBackends(primary, secondary, 0.5)

			opts.PreferDatabase = false
			result := o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			Expect(*result.UNNumber).To(Equal("UN2222"))
			Expect(primary.calls).To(BeZero())
		})
	})

	Context("telemetry", func() {
		It("stamps method and elapsed time when enabled", func() {
			o := NewOrchestratorFromBackends(scripted("database", 0.9, "UN1090"), scripted("json", 0.9, "UN1090"), 0.5)
			result := o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			Expect(result.SearchMethod).NotTo(BeEmpty())
			Expect(result.SearchTimeMs).To(BeNumerically(">=", 0))
		})

		It("leaves the fields empty when disabled", func() {
			o := NewOrchestratorFromBackends(scripted("database", 0.9, "UN1090"), scripted("json", 0.9, "UN1090"), 0.5)
			opts.EnableTelemetry = false
			result := o.Classify(context.Background(), "SKU-1", "Acetone", opts)
			Expect(result.SearchMethod).To(BeEmpty())
			Expect(result.SearchTimeMs).To(BeZero())
		})
	})
})

var _ = Describe("Batch classification", func() {
	var opts BatchOptions

	BeforeEach(func() {
		opts = BatchOptions{Concurrency: 2, PreferDatabase: true}
	})

	It("returns one entry per SKU and isolates per-item failures", func() {
		primary := scripted("database", 0.9, "UN1090")
		primary.panicOn = "Poison Item"
		o := NewOrchestratorFromBackends(primary, scripted("json", 0.9, "UN1090"), 0.5)

		items := []BatchItem{
			{SKU: "SKU-1", Name: "Acetone"},
			{SKU: "SKU-2", Name: "Methanol"},
			{SKU: "SKU-3", Name: "Poison Item"},
			{SKU: "SKU-4", Name: "Kerosene"},
			{SKU: "SKU-5", Name: "Ethanol"},
		}
		results := o.ClassifyBatch(context.Background(), items, opts)
		Expect(results).To(HaveLen(5))
		Expect(results["SKU-3"].Source).To(Equal(hazmat.SourceError))
		Expect(results["SKU-3"].Confidence).To(BeZero())
		for _, sku := range []string{"SKU-1", "SKU-2", "SKU-4", "SKU-5"} {
			Expect(results[sku].Source).NotTo(Equal(hazmat.SourceError), sku)
		}
	})

	It("lets duplicate SKUs overwrite earlier entries", func() {
		secondary := &fakeBackend{name: "json"}
		primary := scripted("database", 0.9, "UN1090")
		o := NewOrchestratorFromBackends(primary, secondary, 0.5)

		items := []BatchItem{
			{SKU: "SKU-1", Name: "Acetone"},
			{SKU: "SKU-1", Name: "Poison Item"},
		}
		primary.panicOn = "Poison Item"
		results := o.ClassifyBatch(context.Background(), items, opts)
		Expect(results).To(HaveLen(1))
		Expect(results["SKU-1"].Source).To(Equal(hazmat.SourceError))
	})

	It("defaults the window size when unset", func() {
		o := NewOrchestratorFromBackends(scripted("database", 0.9, "UN1090"), scripted("json", 0.9, "UN1090"), 0.5)
		results := o.ClassifyBatch(context.Background(), []BatchItem{{SKU: "SKU-1", Name: "Acetone"}}, BatchOptions{PreferDatabase: true})
		Expect(results).To(HaveLen(1))
	})
})
