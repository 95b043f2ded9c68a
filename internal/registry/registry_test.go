package registry_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/models"
	"github.com/esnunes/featurechat/internal/registry"
)

var _ = Describe("Registry", func() {
	var (
		ctx context.Context
		reg *registry.Registry
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = registry.New()
		now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	})

	Describe("Create", func() {
		It("should hand out sequential ids starting at f1", func() {
			for _, want := range []string{"f1", "f2", "f3"} {
				d, c, err := reg.Create(ctx, "t", "initial_description", now)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.ID).To(Equal(want))
				Expect(d.Status).To(Equal(models.StatusInDiscussion))
				Expect(d.CreatedAt).To(Equal(now))
				Expect(c.ConversationHistory).To(BeEmpty())
			}
			Expect(reg.Len()).To(Equal(3))
		})

		It("should not reuse ids under concurrent creation", func() {
			var wg sync.WaitGroup
			ids := make(chan string, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					d, _, err := reg.Create(ctx, "t", "initial_description", now)
					Expect(err).NotTo(HaveOccurred())
					ids <- d.ID
				}()
			}
			wg.Wait()
			close(ids)

			seen := map[string]bool{}
			for id := range ids {
				Expect(seen).NotTo(HaveKey(id))
				seen[id] = true
			}
			Expect(seen).To(HaveLen(50))
		})
	})

	Describe("List", func() {
		It("should return discussions in creation order", func() {
			for _, title := range []string{"a", "b", "c"} {
				_, _, err := reg.Create(ctx, title, "initial_description", now)
				Expect(err).NotTo(HaveOccurred())
			}
			list, err := reg.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(3))
			Expect(list[0].Title).To(Equal("a"))
			Expect(list[2].ID).To(Equal("f3"))
		})

		It("should return an empty list when nothing exists", func() {
			list, err := reg.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("should return ErrNotFound for unknown ids", func() {
			_, _, err := reg.Get(ctx, "f1")
			Expect(errors.Is(err, interview.ErrNotFound)).To(BeTrue())
		})

		It("should not alias stored state", func() {
			d, c, err := reg.Create(ctx, "t", "initial_description", now)
			Expect(err).NotTo(HaveOccurred())
			d.Title = "changed"
			c.PreviousDecisions = append(c.PreviousDecisions, "x")

			got, gotCtx, err := reg.Get(ctx, d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal("t"))
			Expect(gotCtx.PreviousDecisions).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		var id string

		BeforeEach(func() {
			d, _, err := reg.Create(ctx, "t", "initial_description", now)
			Expect(err).NotTo(HaveOccurred())
			id = d.ID
		})

		It("should store the changes made by fn", func() {
			err := reg.Update(ctx, id, func(d *models.Discussion, c *models.Context) error {
				d.Answers.Set(models.FieldDescription, models.Scalar("desc"))
				c.ConversationHistory = append(c.ConversationHistory, models.Exchange{Prompt: "q", Response: "desc"})
				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			d, c, err := reg.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Answers.Get(models.FieldDescription).Text).To(Equal("desc"))
			Expect(c.ConversationHistory).To(HaveLen(1))
		})

		It("should discard every change when fn fails", func() {
			boom := errors.New("boom")
			err := reg.Update(ctx, id, func(d *models.Discussion, c *models.Context) error {
				d.Status = models.StatusProposed
				d.Answers.Set(models.FieldDescription, models.Scalar("half written"))
				c.ConversationHistory = append(c.ConversationHistory, models.Exchange{Prompt: "q"})
				return boom
			})
			Expect(err).To(MatchError(boom))

			d, c, err := reg.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Status).To(Equal(models.StatusInDiscussion))
			Expect(d.Answers.Get(models.FieldDescription).Present()).To(BeFalse())
			Expect(c.ConversationHistory).To(BeEmpty())
		})

		It("should return ErrNotFound without calling fn", func() {
			called := false
			err := reg.Update(ctx, "f99", func(*models.Discussion, *models.Context) error {
				called = true
				return nil
			})
			Expect(err).To(MatchError(interview.ErrNotFound))
			Expect(called).To(BeFalse())
			Expect(reg.Len()).To(Equal(1))
		})

		It("should serialize concurrent updates to the same discussion", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					err := reg.Update(ctx, id, func(_ *models.Discussion, c *models.Context) error {
						c.ConversationHistory = append(c.ConversationHistory, models.Exchange{Prompt: "q"})
						return nil
					})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			_, c, err := reg.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ConversationHistory).To(HaveLen(20))
		})
	})
})
