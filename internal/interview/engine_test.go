package interview_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/models"
	"github.com/esnunes/featurechat/internal/registry"
)

var answers = []string{
	"A dark colour scheme for the whole app",
	"Less eye strain at night",
	"night owls\n\n  mobile users \n",
	"toggle in settings\nrespect OS preference",
	"30% adoption\nno contrast bugs",
	"CSS custom properties",
	"third-party widgets\nimages with white backgrounds",
	"Q3, high priority",
}

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		store  *registry.Registry
		engine *interview.Engine
		clock  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = registry.New()
		clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		engine = interview.NewEngine(store, nil, interview.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
	})

	Describe("Begin", func() {
		It("should start a discussion at the first prompt with nothing answered", func() {
			out, err := engine.Begin(ctx, "Dark mode")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.ID).To(Equal("f1"))
			Expect(out.Prompt.ID).To(Equal("initial_description"))
			Expect(out.Message()).To(ContainSubstring("Feature ID: f1"))
			Expect(out.Message()).To(ContainSubstring(interview.FirstPrompt().Message))

			d, c, err := engine.Read(ctx, out.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Title).To(Equal("Dark mode"))
			Expect(d.Status).To(Equal(models.StatusInDiscussion))
			Expect(d.CurrentPrompt).To(Equal("initial_description"))
			for _, f := range models.Fields() {
				Expect(d.Answers.Get(f).Present()).To(BeFalse(), "slot %s", f)
			}
			Expect(c.ConversationHistory).To(BeEmpty())
			Expect(c.PreviousDecisions).To(BeEmpty())
			Expect(c.RelatedFeatures).To(BeEmpty())
			Expect(c.TechnicalConstraints).To(BeEmpty())
		})

		It("should allocate increasing ids", func() {
			a, err := engine.Begin(ctx, "one")
			Expect(err).NotTo(HaveOccurred())
			b, err := engine.Begin(ctx, "two")
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ID).To(Equal("f1"))
			Expect(b.ID).To(Equal("f2"))
		})
	})

	Describe("Answer", func() {
		var id string

		BeforeEach(func() {
			out, err := engine.Begin(ctx, "Dark mode")
			Expect(err).NotTo(HaveOccurred())
			id = out.ID
		})

		It("should record the answer and return the next question", func() {
			out, err := engine.Answer(ctx, id, answers[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Complete).To(BeFalse())
			Expect(out.Next).NotTo(BeNil())
			Expect(out.Next.ID).To(Equal("business_value"))
			Expect(out.Message).To(HavePrefix("Response recorded. "))
			Expect(out.Message).To(ContainSubstring("Next question:\n" + out.Next.Message))

			d, c, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Answers.Get(models.FieldDescription)).To(Equal(models.Scalar(answers[0])))
			Expect(d.CurrentPrompt).To(Equal("business_value"))
			Expect(c.ConversationHistory).To(HaveLen(1))
			Expect(c.ConversationHistory[0].Prompt).To(Equal(interview.FirstPrompt().Message))
			Expect(c.ConversationHistory[0].Response).To(Equal(answers[0]))
			Expect(d.UpdatedAt).To(BeTemporally(">", d.CreatedAt))
		})

		It("should fill slots in script order and keep history in call order", func() {
			script := interview.Script()
			for i, text := range answers {
				_, err := engine.Answer(ctx, id, text)
				Expect(err).NotTo(HaveOccurred())

				d, c, err := engine.Read(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(c.ConversationHistory).To(HaveLen(i + 1))
				for k, p := range script {
					Expect(d.Answers.Get(p.Field).Present()).To(Equal(k <= i), "after %d answers, slot %s", i+1, p.Field)
				}
			}
		})

		It("should split list answers into trimmed lines", func() {
			for _, text := range answers[:3] {
				_, err := engine.Answer(ctx, id, text)
				Expect(err).NotTo(HaveOccurred())
			}
			d, _, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Answers.Get(models.FieldTargetUsers).Items).To(Equal([]string{"night owls", "mobile users"}))
		})

		It("should mark the discussion proposed after the last prompt", func() {
			var out *interview.AnswerResult
			for i, text := range answers {
				d, _, err := engine.Read(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Status).To(Equal(models.StatusInDiscussion), "before answer %d", i+1)

				out, err = engine.Answer(ctx, id, text)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(out.Complete).To(BeTrue())
			Expect(out.Next).To(BeNil())
			Expect(out.Message).To(ContainSubstring("fully documented"))

			d, c, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Status).To(Equal(models.StatusProposed))
			Expect(d.CurrentPrompt).To(BeEmpty())
			Expect(d.Complete()).To(BeTrue())
			Expect(c.ConversationHistory).To(HaveLen(len(answers)))
			Expect(d.Answers.Get(models.FieldTimeline).Text).To(Equal("Q3, high priority"))
		})

		It("should reject answers after completion without changing anything", func() {
			for _, text := range answers {
				_, err := engine.Answer(ctx, id, text)
				Expect(err).NotTo(HaveOccurred())
			}
			before, beforeCtx, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			out, err := engine.Answer(ctx, id, "one more thing")
			Expect(err).To(MatchError(interview.ErrInvalidState))
			Expect(out).To(BeNil())

			after, afterCtx, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
			Expect(afterCtx).To(Equal(beforeCtx))
		})

		It("should apply a repeated answer to the new current prompt", func() {
			_, err := engine.Answer(ctx, id, "same text")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Answer(ctx, id, "same text")
			Expect(err).NotTo(HaveOccurred())

			d, _, err := engine.Read(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Answers.Get(models.FieldDescription).Text).To(Equal("same text"))
			Expect(d.Answers.Get(models.FieldBusinessValue).Text).To(Equal("same text"))
			Expect(d.CurrentPrompt).To(Equal("target_users"))
		})

		Context("when the discussion does not exist", func() {
			It("should return ErrNotFound and create nothing", func() {
				out, err := engine.Answer(ctx, "nonexistent", "x")
				Expect(errors.Is(err, interview.ErrNotFound)).To(BeTrue())
				Expect(out).To(BeNil())
				Expect(store.Len()).To(Equal(1))

				d, c, err := engine.Read(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.CurrentPrompt).To(Equal("initial_description"))
				Expect(c.ConversationHistory).To(BeEmpty())
			})
		})
	})

	Describe("Read", func() {
		It("should return ErrNotFound for unknown ids", func() {
			_, _, err := engine.Read(ctx, "f42")
			Expect(err).To(MatchError(interview.ErrNotFound))
		})

		It("should hand out copies", func() {
			out, err := engine.Begin(ctx, "Dark mode")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Answer(ctx, out.ID, "desc")
			Expect(err).NotTo(HaveOccurred())

			d, c, err := engine.Read(ctx, out.ID)
			Expect(err).NotTo(HaveOccurred())
			d.Title = "mutated"
			c.ConversationHistory[0].Response = "mutated"

			again, againCtx, err := engine.Read(ctx, out.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Title).To(Equal("Dark mode"))
			Expect(againCtx.ConversationHistory[0].Response).To(Equal("desc"))
		})
	})

	Describe("List", func() {
		It("should list discussions in creation order with their description", func() {
			for i := 1; i <= 3; i++ {
				_, err := engine.Begin(ctx, fmt.Sprintf("feature %d", i))
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := engine.Answer(ctx, "f2", "second description")
			Expect(err).NotTo(HaveOccurred())

			list, err := engine.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(Equal([]interview.Summary{
				{ID: "f1", Title: "feature 1"},
				{ID: "f2", Title: "feature 2", Description: "second description"},
				{ID: "f3", Title: "feature 3"},
			}))
		})
	})

	Describe("Subscribe", func() {
		It("should report every created and answered discussion", func() {
			var seen []string
			engine.Subscribe(func(_ context.Context, d *models.Discussion) {
				seen = append(seen, d.ID+":"+d.CurrentPrompt)
				d.Title = "mutated by listener"
			})

			out, err := engine.Begin(ctx, "Dark mode")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Answer(ctx, out.ID, "desc")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Answer(ctx, "f9", "nobody")
			Expect(err).To(HaveOccurred())

			Expect(seen).To(Equal([]string{"f1:initial_description", "f1:business_value"}))
			d, _, err := engine.Read(ctx, out.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Title).To(Equal("Dark mode"))
		})
	})

	Describe("isolation", func() {
		It("should keep interleaved discussions independent", func() {
			a, err := engine.Begin(ctx, "A")
			Expect(err).NotTo(HaveOccurred())
			b, err := engine.Begin(ctx, "B")
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				_, err := engine.Answer(ctx, a.ID, fmt.Sprintf("a%d", i))
				Expect(err).NotTo(HaveOccurred())
				if i < 2 {
					_, err = engine.Answer(ctx, b.ID, fmt.Sprintf("b%d", i))
					Expect(err).NotTo(HaveOccurred())
				}
			}

			da, ca, err := engine.Read(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			db, cb, err := engine.Read(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(ca.ConversationHistory).To(HaveLen(3))
			Expect(cb.ConversationHistory).To(HaveLen(2))
			Expect(da.CurrentPrompt).To(Equal("requirements"))
			Expect(db.CurrentPrompt).To(Equal("target_users"))
			Expect(da.Answers.Get(models.FieldDescription).Text).To(Equal("a0"))
			Expect(db.Answers.Get(models.FieldDescription).Text).To(Equal("b0"))
			Expect(db.Answers.Get(models.FieldTargetUsers).Present()).To(BeFalse())
		})
	})
})
