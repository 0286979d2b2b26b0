package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/classifier"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/dates"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/holiday"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/ledger"
	ledgererrors "github.com/AkshiGarg/nagarro-leave-manager/internal/ledger/errors"

	"go.uber.org/zap"
)

// User-visible messages. These are a compatibility contract with the
// deployed assistant; change them only deliberately.
const (
	MsgAskEmployeeID  = "Please provide your employee id."
	MsgGreeting       = "Hi!! How may I help you?"
	MsgIntroduction   = "Hi, I am Cali !!"
	MsgNotUnderstood  = "I didn't understand your query."
	MsgApplyOrShow    = "Do you want to apply for a leave or Do you want me to show your leaves."
	MsgUserNotFound   = "No user found with id: %s"
	MsgQuotaExhausted = "You have taken all your leaves. You can not apply for more."
	MsgQuotaPartial   = "You can avail only %d leaves"
	MsgDuplicateDay   = "You have already applied for a leave on that date."

	MsgAskDate        = "On which date do you want to apply for the leave?"
	MsgAskReason      = "Please provide the reason for your leave."
	MsgAskComment     = "Any comments you would like to add?"
	MsgConfirmSummary = "You want a leave on %s (reason: %s, comment: %s). Should I submit it? (y/n)"
	MsgAskYesNo       = "Please enter y or n."
	MsgSubmitted      = "Your leave request has been submitted."
	MsgBatchSubmitted = "Your leave request for %d day(s) has been submitted."
	MsgDiscarded      = "Okay, I have discarded your leave request."

	MsgProvideUpcomingDates = "Please provide upcoming dates."
	MsgNoPublicHolidays     = "No public holidays."
	MsgNoFlexibleHolidays   = "No flexible holidays."
	MsgFlexibleHint         = "You may avail for the flexible leave by selecting it."
	MsgNoRequestsFound      = "No upcoming leave requests found for employee: %s"
	MsgRequestListHeader    = "You have submitted following requests: "
)

// DefaultFieldValue fills reason and comments on entity-driven
// submissions, where the user never typed them.
const DefaultFieldValue = "not mentioned"

const flexibleRequestTypePhrase = "flexible holidays"

//go:generate mockgen -source=conversation_service.go -destination=mock/conversation_service_mock.go -package=mock
type Service interface {
	// ProcessTurn consumes one inbound turn, mutates profile and flow to
	// their next state, and returns the replies to send. Recoverable
	// dialog failures come back as replies; only infrastructure faults
	// return an error.
	ProcessTurn(ctx context.Context, req TurnRequest, profile *UserProfile, flow *ConversationFlow) ([]Reply, error)
}

type service struct {
	classifier classifier.Classifier
	resolver   dates.Resolver
	ledger     ledger.Service
	holidays   holiday.Service
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	cls classifier.Classifier,
	resolver dates.Resolver,
	ledgerSvc ledger.Service,
	holidaySvc holiday.Service,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(cls, resolver, ledgerSvc, holidaySvc, time.Now, logger...)
}

// NewServiceWithClock pins the engine's notion of "now". Date recency
// checks depend on it, so tests inject a fixed instant.
func NewServiceWithClock(
	cls classifier.Classifier,
	resolver dates.Resolver,
	ledgerSvc ledger.Service,
	holidaySvc holiday.Service,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("conversation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{
		classifier: cls,
		resolver:   resolver,
		ledger:     ledgerSvc,
		holidays:   holidaySvc,
		now:        now,
		logger:     l,
	}
}

func (s *service) ProcessTurn(ctx context.Context, req TurnRequest, profile *UserProfile, flow *ConversationFlow) ([]Reply, error) {
	s.logger.Debug("process turn",
		zap.String("conversation_id", req.ConversationID),
		zap.Bool("identified", flow.PromptedForEmployeeID),
		zap.String("detail", string(flow.Detail)),
	)

	if !flow.PromptedForEmployeeID {
		return s.promptForEmployeeID(ctx, req, flow), nil
	}

	if flow.Detail != DetailNone {
		return s.continueSlotFilling(ctx, req.Text, profile, flow)
	}

	// Identified and idle. The first raw reply after the prompt is the
	// employee id; every later turn is a query.
	if profile.ID == "" {
		profile.ID = strings.TrimSpace(req.Text)
	}

	if req.Selection != nil {
		return s.submitFlexibleSelection(ctx, profile, req.Selection)
	}

	result, err := s.fetchClassification(ctx, req.Text, flow)
	if err != nil {
		s.logger.Warn("classification unavailable", zap.Error(err))
		return textReply(MsgNotUnderstood), nil
	}

	switch result.TopIntent {
	case classifier.IntentGreeting:
		return textReply(MsgGreeting), nil
	case classifier.IntentHelp:
		return s.introduce(), nil
	case classifier.IntentHoliday:
		return s.listHolidays(ctx, result)
	case classifier.IntentLeaveRequest:
		return s.dispatchLeaveRequest(ctx, profile, flow, result)
	case classifier.IntentNone:
		return textReply(MsgNotUnderstood), nil
	}
	return textReply(MsgNotUnderstood), nil
}

// promptForEmployeeID classifies the utterance speculatively so the
// original question survives the identification detour, then asks for
// the employee id. Classifier trouble here is not worth surfacing; the
// next idle turn will classify fresh.
func (s *service) promptForEmployeeID(ctx context.Context, req TurnRequest, flow *ConversationFlow) []Reply {
	if req.Text != "" {
		result, err := s.classifier.Classify(ctx, req.Text)
		if err != nil {
			s.logger.Warn("speculative classification failed", zap.Error(err))
		} else {
			flow.PendingClassification = result
		}
	}
	flow.PromptedForEmployeeID = true
	return textReply(MsgAskEmployeeID)
}

// fetchClassification consumes the cached result from the
// identification detour, or calls the classifier for this turn's text.
func (s *service) fetchClassification(ctx context.Context, text string, flow *ConversationFlow) (*classifier.Result, error) {
	if pending := flow.TakePending(); pending != nil {
		return pending, nil
	}
	return s.classifier.Classify(ctx, text)
}

func (s *service) introduce() []Reply {
	return []Reply{
		{Kind: ReplyText, Text: MsgIntroduction},
		{Kind: ReplyChoices, Choices: []Choice{
			{Title: "Apply for a leave"},
			{Title: "Show my leave requests"},
			{Title: "Upcoming holidays"},
		}},
	}
}

func (s *service) dispatchLeaveRequest(ctx context.Context, profile *UserProfile, flow *ConversationFlow, result *classifier.Result) ([]Reply, error) {
	if !result.HasAction() {
		return textReply(MsgApplyOrShow), nil
	}

	record, err := s.ledger.Find(ctx, profile.ID)
	if errors.Is(err, ledgererrors.ErrEmployeeNotFound) {
		return textReply(MsgUserNotFound, profile.ID), nil
	}
	if err != nil {
		return nil, err
	}

	switch result.Action {
	case classifier.ActionApply:
		return s.applyForLeave(ctx, profile, flow, record, result)
	case classifier.ActionShow:
		return s.showRequests(ctx, record, result)
	}
	return textReply(MsgApplyOrShow), nil
}

// applyForLeave handles the leave-request/apply intent. A date-range
// entity submits a weekday batch directly; a single date entity submits
// that day directly with no weekend filter; with no date entity the
// slot-filling sub-dialog starts.
func (s *service) applyForLeave(ctx context.Context, profile *UserProfile, flow *ConversationFlow, record *ledger.LeaveRecord, result *classifier.Result) ([]Reply, error) {
	if record.LeavesTaken >= ledger.AnnualQuota {
		return textReply(MsgQuotaExhausted), nil
	}

	if result.DateRangePhrase != "" {
		return s.submitDateRange(ctx, profile, record, result.DateRangePhrase)
	}
	if result.DatePhrase != "" {
		return s.submitSingleDate(ctx, profile, result.DatePhrase)
	}

	flow.Detail = DetailDate
	return textReply(MsgAskDate), nil
}

func (s *service) submitDateRange(ctx context.Context, profile *UserProfile, record *ledger.LeaveRecord, phrase string) ([]Reply, error) {
	days, err := s.resolver.ResolveRange(phrase, s.now())
	if err != nil {
		return textReply(dates.MsgUnparsableDate), nil
	}

	// The resolver reports duplicates when phrases overlap; the ledger
	// needs each day once.
	days = dates.RemoveWeekends(dates.Dedupe(days))
	if len(days) == 0 {
		return textReply(dates.MsgPastDate), nil
	}

	if record.LeavesTaken+len(days) > ledger.AnnualQuota {
		return textReply(MsgQuotaPartial, record.Remaining()), nil
	}

	requests := make([]ledger.NewRequest, 0, len(days))
	for _, day := range days {
		requests = append(requests, ledger.NewRequest{
			Type:     ledger.RequestTypeLeave,
			Date:     day,
			Reason:   DefaultFieldValue,
			Comments: DefaultFieldValue,
		})
	}

	if reply, err := s.append(ctx, profile.ID, requests, len(days), record.Remaining()); reply != nil || err != nil {
		return reply, err
	}

	s.logger.Info("leave batch submitted",
		zap.String("employee_id", profile.ID),
		zap.Int("days", len(days)),
	)
	return textReply(MsgBatchSubmitted, len(days)), nil
}

// submitSingleDate takes the first future day the phrase resolves to.
// Unlike the slot-filling path this does not reject weekends, matching
// the assistant's long-standing behavior for explicit dates.
func (s *service) submitSingleDate(ctx context.Context, profile *UserProfile, phrase string) ([]Reply, error) {
	days, err := s.resolver.ResolveRange(phrase, s.now())
	if err != nil {
		return textReply(dates.MsgUnparsableDate), nil
	}
	if len(days) == 0 {
		return textReply(dates.MsgPastDate), nil
	}

	requests := []ledger.NewRequest{{
		Type:     ledger.RequestTypeLeave,
		Date:     days[0],
		Reason:   DefaultFieldValue,
		Comments: DefaultFieldValue,
	}}
	if reply, err := s.append(ctx, profile.ID, requests, 1, 0); reply != nil || err != nil {
		return reply, err
	}

	s.logger.Info("leave submitted",
		zap.String("employee_id", profile.ID),
		zap.String("date", days[0].Format(dates.DisplayFormat)),
	)
	return textReply(MsgSubmitted), nil
}

// append writes to the ledger and maps its rejections onto dialog
// replies. A nil, nil return means the write succeeded.
func (s *service) append(ctx context.Context, employeeID string, requests []ledger.NewRequest, delta, remaining int) ([]Reply, error) {
	_, err := s.ledger.AppendAndIncrement(ctx, employeeID, requests, delta)
	switch {
	case err == nil:
		return nil, nil
	case errors.Is(err, ledgererrors.ErrQuotaExceeded):
		if remaining > 0 {
			return textReply(MsgQuotaPartial, remaining), nil
		}
		return textReply(MsgQuotaExhausted), nil
	case errors.Is(err, ledgererrors.ErrDuplicateRequest):
		return textReply(MsgDuplicateDay), nil
	case errors.Is(err, ledgererrors.ErrEmployeeNotFound):
		return textReply(MsgUserNotFound, employeeID), nil
	default:
		return nil, err
	}
}

func (s *service) continueSlotFilling(ctx context.Context, text string, profile *UserProfile, flow *ConversationFlow) ([]Reply, error) {
	switch flow.Detail {
	case DetailDate:
		validation := s.resolver.ValidateSingleDate(text, s.now())
		if !validation.Success {
			return textReply(validation.Message), nil
		}
		profile.LeaveDate = validation.Display
		flow.Detail = DetailReason
		return textReply(MsgAskReason), nil

	case DetailReason:
		profile.Reason = text
		flow.Detail = DetailConfirm
		return textReply(MsgAskComment), nil

	case DetailComment, DetailConfirm:
		profile.Comment = text
		flow.Detail = DetailSubmitted
		return textReply(MsgConfirmSummary, profile.LeaveDate, profile.Reason, profile.Comment), nil

	case DetailSubmitted:
		return s.finalizeSubmission(ctx, text, profile, flow)

	case DetailNone:
	}
	return textReply(MsgNotUnderstood), nil
}

func (s *service) finalizeSubmission(ctx context.Context, text string, profile *UserProfile, flow *ConversationFlow) ([]Reply, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes":
		day, err := time.Parse(dates.DisplayFormat, profile.LeaveDate)
		if err != nil {
			// The stored date came from the resolver, so this only
			// happens with corrupted state. Restart the dialog.
			s.logger.Error("stored leave date unreadable",
				zap.String("leave_date", profile.LeaveDate),
				zap.Error(err),
			)
			profile.ClearDraft()
			flow.Detail = DetailNone
			return textReply(MsgNotUnderstood), nil
		}

		requests := []ledger.NewRequest{{
			Type:     ledger.RequestTypeLeave,
			Date:     day,
			Reason:   profile.Reason,
			Comments: profile.Comment,
		}}
		reply, err := s.append(ctx, profile.ID, requests, 1, 0)
		if err != nil {
			return nil, err
		}

		// Whether the ledger accepted or rejected, the dialog is over;
		// replaying "y" could never change the outcome.
		profile.ClearDraft()
		flow.Detail = DetailNone
		if reply != nil {
			return reply, nil
		}

		s.logger.Info("leave submitted",
			zap.String("employee_id", profile.ID),
			zap.String("date", day.Format(dates.DisplayFormat)),
		)
		return textReply(MsgSubmitted), nil

	case "n", "no":
		profile.ClearDraft()
		flow.Detail = DetailNone
		return textReply(MsgDiscarded), nil

	default:
		return textReply(MsgAskYesNo), nil
	}
}

// submitFlexibleSelection appends a flexible-holiday entry for a
// quick-reply pick. Flexible days do not count against the quota.
func (s *service) submitFlexibleSelection(ctx context.Context, profile *UserProfile, sel *Selection) ([]Reply, error) {
	day, err := time.Parse(holiday.DateFormat, sel.Date)
	if err != nil {
		s.logger.Warn("selection date unreadable", zap.String("date", sel.Date))
		return textReply(dates.MsgUnparsableDate), nil
	}

	reason := sel.Name
	if reason == "" {
		reason = DefaultFieldValue
	}
	requests := []ledger.NewRequest{{
		Type:     ledger.RequestTypeFlexible,
		Date:     day,
		Reason:   reason,
		Comments: DefaultFieldValue,
	}}
	if reply, err := s.append(ctx, profile.ID, requests, 0, 0); reply != nil || err != nil {
		return reply, err
	}

	s.logger.Info("flexible holiday submitted",
		zap.String("employee_id", profile.ID),
		zap.String("date", sel.Date),
		zap.String("name", sel.Name),
	)
	return textReply(MsgSubmitted), nil
}

func (s *service) listHolidays(ctx context.Context, result *classifier.Result) ([]Reply, error) {
	typ := holiday.TypePublic
	flexible := result.WantsRequestType(flexibleRequestTypePhrase)
	if flexible {
		typ = holiday.TypeFlexible
	}

	phrase := result.DateRangePhrase
	if phrase == "" {
		phrase = result.DatePhrase
	}

	var (
		holidays []holiday.Holiday
		err      error
	)
	if phrase != "" {
		var days []time.Time
		days, err = s.resolver.ResolveRange(phrase, s.now())
		if err != nil || len(days) == 0 {
			return textReply(MsgProvideUpcomingDates), nil
		}
		holidays, err = s.holidays.ListOnDates(ctx, typ, days)
	} else {
		holidays, err = s.holidays.ListUpcoming(ctx, typ, s.now())
	}
	if err != nil {
		return nil, err
	}

	if len(holidays) == 0 {
		if flexible {
			return textReply(MsgNoFlexibleHolidays), nil
		}
		return textReply(MsgNoPublicHolidays), nil
	}

	if flexible {
		choices := make([]Choice, 0, len(holidays))
		for _, h := range holidays {
			choices = append(choices, Choice{Title: h.Label(), Date: h.Date, Name: h.Name})
		}
		return []Reply{{Kind: ReplyChoices, Text: MsgFlexibleHint, Choices: choices}}, nil
	}

	items := make([]string, 0, len(holidays))
	for _, h := range holidays {
		items = append(items, h.Label())
	}
	return []Reply{{Kind: ReplyHolidayList, Items: items}}, nil
}

// showRequests lists the employee's submitted requests, filtered by the
// request-type entity when one was extracted and by the resolved date
// filter when the utterance carried one.
func (s *service) showRequests(ctx context.Context, record *ledger.LeaveRecord, result *classifier.Result) ([]Reply, error) {
	var filter map[string]struct{}
	phrase := result.DateRangePhrase
	if phrase == "" {
		phrase = result.DatePhrase
	}
	if phrase != "" {
		days, err := s.resolver.ResolveRange(phrase, s.now())
		if err != nil || len(days) == 0 {
			return textReply(MsgProvideUpcomingDates), nil
		}
		filter = make(map[string]struct{}, len(days))
		for _, d := range days {
			filter[d.Format("2006-01-02")] = struct{}{}
		}
	}

	now := s.now()
	var items []string
	for _, req := range record.LeaveRequests {
		if len(result.RequestTypes) > 0 && !result.WantsRequestType(req.Type) {
			continue
		}
		if filter != nil {
			if _, ok := filter[req.Date.Format("2006-01-02")]; !ok {
				continue
			}
		} else if !req.Date.After(now) {
			continue
		}
		items = append(items, req.Date.Format("2006-01-02")+" ( "+req.Reason+" )")
	}

	if len(items) == 0 {
		return textReply(MsgNoRequestsFound, record.EmployeeID), nil
	}
	return []Reply{{Kind: ReplyRequestList, Text: MsgRequestListHeader, Items: items}}, nil
}
