package domain_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dkeye/Estimate/internal/domain"
)

var _ = Describe("DeriveStatus", func() {
	DescribeTable("applies offline, observer, voted, thinking in that order",
		func(role domain.Role, online, voted bool, want domain.Status) {
			Expect(domain.DeriveStatus(role, online, voted)).To(Equal(want))
		},
		Entry("offline reviewer who voted", domain.RoleReviewer, false, true, domain.StatusOffline),
		Entry("offline observer", domain.RoleObserver, false, false, domain.StatusOffline),
		Entry("online observer", domain.RoleObserver, true, false, domain.StatusWatching),
		Entry("online reviewer who voted", domain.RoleReviewer, true, true, domain.StatusVoted),
		Entry("online reviewer still thinking", domain.RoleReviewer, true, false, domain.StatusThinking),
	)
})

var _ = Describe("ParseRole", func() {
	It("treats anything but observer as reviewer", func() {
		Expect(domain.ParseRole("observer")).To(Equal(domain.RoleObserver))
		Expect(domain.ParseRole(" Observer ")).To(Equal(domain.RoleObserver))
		Expect(domain.ParseRole("")).To(Equal(domain.RoleReviewer))
		Expect(domain.ParseRole("admin")).To(Equal(domain.RoleReviewer))
	})
})

var _ = Describe("NewMember", func() {
	It("seeds status from the role", func() {
		m, err := domain.NewMember("a", "Alice", domain.RoleReviewer, "c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Status).To(Equal(domain.StatusThinking))
		Expect(m.Online).To(BeTrue())

		o, err := domain.NewMember("b", "Bob", domain.RoleObserver, "c2")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.Status).To(Equal(domain.StatusWatching))
		Expect(o.CanVote()).To(BeFalse())
	})

	It("stores the normalized id", func() {
		m, err := domain.NewMember("  bob  ", "Bob", domain.RoleReviewer, "c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.ID).To(Equal(domain.MemberID("bob")))
	})

	It("rejects ids over the length limit instead of cutting them", func() {
		_, err := domain.NewMember(domain.MemberID(strings.Repeat("a", domain.MaxMemberIDLen+1)), "Bob", domain.RoleReviewer, "c1")
		Expect(err).To(MatchError(domain.ErrMemberIDTooLong))

		mid, err := domain.NormalizeMemberID(domain.MemberID(strings.Repeat("é", domain.MaxMemberIDLen)))
		Expect(err).NotTo(HaveOccurred())
		Expect([]rune(string(mid))).To(HaveLen(domain.MaxMemberIDLen))
	})

	It("rejects blank ids and names", func() {
		_, err := domain.NewMember("  ", "Alice", domain.RoleReviewer, "c1")
		Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
		_, err = domain.NewMember("a", " ", domain.RoleReviewer, "c1")
		Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
	})
})

var _ = Describe("Estimate", func() {
	It("decodes numbers and strings", func() {
		var votes []domain.Estimate
		Expect(json.Unmarshal([]byte(`[5, "8", "?", 0.5]`), &votes)).To(Succeed())
		Expect(votes).To(Equal([]domain.Estimate{"5", "8", "?", "0.5"}))
	})

	It("rejects other JSON kinds", func() {
		var e domain.Estimate
		err := json.Unmarshal([]byte(`true`), &e)
		Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
	})

	It("encodes numeric values as numbers", func() {
		b, err := json.Marshal(map[string]domain.Estimate{"a": "5", "b": "?", "c": " 0.50 "})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"a": 5, "b": "?", "c": 0.5}`))
	})

	It("only treats finite numbers as numeric", func() {
		for _, s := range []string{"?", "coffee", "", "Inf", "NaN", "1e999", "0x1p4", "0X10", "1_000"} {
			_, ok := domain.Estimate(s).Float()
			Expect(ok).To(BeFalse(), s)
		}
		f, ok := domain.Estimate("13").Float()
		Expect(ok).To(BeTrue())
		Expect(f).To(Equal(13.0))
	})

	It("rejects empty estimates on normalize", func() {
		_, err := domain.Estimate("   ").Normalize()
		Expect(err).To(MatchError(domain.ErrEstimateEmpty))
	})
})

var _ = Describe("Summarize", func() {
	It("averages numeric votes and counts all votes", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "3", "b": "5", "c": "?"})
		Expect(t.Average).To(Equal(4.0))
		Expect(t.TotalVotes).To(Equal(3))
		Expect(t.Consensus).To(BeFalse())
	})

	It("reports consensus on identical numeric votes", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "5", "b": "5"})
		Expect(t.Average).To(Equal(5.0))
		Expect(t.Consensus).To(BeTrue())
	})

	It("never reports consensus without numeric votes", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "?", "b": "?"})
		Expect(t.Average).To(Equal(0.0))
		Expect(t.Consensus).To(BeFalse())
		Expect(t.TotalVotes).To(Equal(2))
	})

	It("rounds the average to one decimal", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "1", "b": "2", "c": "2"})
		Expect(t.Average).To(Equal(1.7))
	})

	It("leaves hex and separator forms out of the average", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "0x1p4", "b": "2", "c": "1_0"})
		Expect(t.Average).To(Equal(2.0))
		Expect(t.TotalVotes).To(Equal(3))
		Expect(t.Consensus).To(BeTrue())
	})

	It("ignores non-numeric votes when checking consensus", func() {
		t := domain.Summarize(map[domain.MemberID]domain.Estimate{"a": "8", "b": "coffee", "c": "8"})
		Expect(t.Consensus).To(BeTrue())
		Expect(t.TotalVotes).To(Equal(3))
	})
})

var _ = Describe("Analytics", func() {
	It("derives the consensus rate from the running counters", func() {
		var a domain.Analytics
		a.Record(true)
		a.Record(false)
		a.Record(false)
		Expect(a.TotalRounds).To(Equal(3))
		Expect(a.ConsensusRounds).To(Equal(1))
		Expect(a.ConsensusRate).To(Equal(33))

		a.Record(true)
		Expect(a.ConsensusRate).To(Equal(50))
	})
})

var _ = Describe("Room", func() {
	var room *domain.Room

	BeforeEach(func() {
		var err error
		room, err = domain.NewRoom("r1", " Sprint 1 ", "Alice", time.Now())
		Expect(err).NotTo(HaveOccurred())
	})

	It("trims and validates names", func() {
		Expect(room.Name).To(Equal("Sprint 1"))
		_, err := domain.NewRoom("r2", " ", "Alice", time.Now())
		Expect(err).To(MatchError(domain.ErrRoomNameEmpty))
		_, err = domain.NewRoom("r2", "x", "", time.Now())
		Expect(err).To(MatchError(domain.ErrCreatorNameEmpty))
	})

	It("hides votes until revealed", func() {
		room.Votes["a"] = "5"
		Expect(room.VisibleVotes()).To(BeEmpty())
		Expect(room.Public().Votes).To(BeEmpty())
		room.Revealed = true
		Expect(room.VisibleVotes()).To(HaveKeyWithValue(domain.MemberID("a"), domain.Estimate("5")))
	})

	It("clones deeply", func() {
		m, _ := domain.NewMember("a", "Alice", domain.RoleReviewer, "c1")
		room.Members = append(room.Members, m)
		room.Votes["a"] = "3"

		cp := room.Clone()
		cp.Members[0].Name = "Changed"
		cp.Votes["a"] = "8"
		cp.AppendMessage(domain.ChatMessage{ID: "1"})

		Expect(room.Members[0].Name).To(Equal("Alice"))
		Expect(room.Votes["a"]).To(Equal(domain.Estimate("3")))
		Expect(room.Messages).To(BeEmpty())
	})

	It("keeps at most 200 messages and replays the last 100 in order", func() {
		for i := range 450 {
			room.AppendMessage(domain.ChatMessage{ID: fmt.Sprint(i)})
		}
		Expect(room.Messages).To(HaveLen(domain.MaxStoredMessages))
		Expect(room.Messages[0].ID).To(Equal("250"))

		h := room.History(100)
		Expect(h).To(HaveLen(100))
		Expect(h[0].ID).To(Equal("350"))
		Expect(h[99].ID).To(Equal("449"))
	})

	It("returns fewer messages when history is short", func() {
		room.AppendMessage(domain.ChatMessage{ID: "only"})
		Expect(room.History(100)).To(HaveLen(1))
	})
})

var _ = Describe("CleanText", func() {
	It("trims and caps at 500 characters", func() {
		Expect(domain.CleanText("  hi  ")).To(Equal("hi"))
		Expect([]rune(domain.CleanText(strings.Repeat("é", 600)))).To(HaveLen(domain.MaxMessageLen))
		Expect(domain.CleanText("   ")).To(BeEmpty())
	})
})

var _ = Describe("PublicMessage", func() {
	It("keeps validation text and hides internal details", func() {
		Expect(domain.PublicMessage(domain.ErrRoomNotFound)).To(Equal("room not found"))
		Expect(domain.PublicMessage(fmt.Errorf("%w: bad thing", domain.ErrValidation))).To(Equal("bad thing"))
		Expect(domain.PublicMessage(fmt.Errorf("%w: nil map", domain.ErrInternal))).To(Equal("internal error"))
	})
})
