package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/mentor/adapters/apiclient"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/chatstream"
	"github.com/satriahrh/cocoa-fruit/mentor/config"
	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/usecase"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
)

const help = `Commands:
  /mode <general|explain|debug|verify|discuss>  switch mentor mode
  /reset                                        clear the conversation
  /verify <file>                                submit the answer in file for review
  /progress                                     show your practicum progress
  /methods                                      list the methods catalogue
  /help                                         show this help
  /exit                                         quit`

func main() {
	gotenv.Load()
	cfg := config.LoadClient()

	url := flag.String("url", cfg.URL, "mentor service base URL (MENTOR_URL)")
	token := flag.String("token", cfg.Token, "access token (MENTOR_TOKEN)")
	mode := flag.String("mode", string(domain.ModeGeneral), "initial mentor mode")
	taskID := flag.String("task-id", "", "practicum task id")
	taskTitle := flag.String("task-title", "", "practicum task title")
	taskDesc := flag.String("task-desc", "", "practicum task description")
	difficulty := flag.String("difficulty", "", "task difficulty: easy, medium or hard")
	criteria := flag.String("criteria", "", "success criteria, separated by ';'")
	debug := flag.Bool("debug", false, "log to stderr")
	flag.Parse()

	if *debug {
		log.Setup(true, "")
	} else {
		log.Replace(zap.NewNop())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.URL, cfg.Token = *url, *token
	api := apiclient.New(cfg.URL, cfg.Token)
	streamer := newStreamer(cfg)

	s := &session{
		out:       os.Stdout,
		streamer:  streamer,
		practicum: usecase.NewPracticumService(streamer, api),
		api:       api,
		mode:      domain.MentorMode(*mode),
		task: domain.PracticumTask{
			ID:              *taskID,
			Title:           *taskTitle,
			Description:     *taskDesc,
			Difficulty:      domain.Difficulty(*difficulty),
			SuccessCriteria: splitCriteria(*criteria),
		},
	}

	fmt.Fprintln(s.out, "AI Mentor. Type a question, or /help for commands.")
	if err := s.loop(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// session is one interactive conversation with the mentor.
type session struct {
	out       io.Writer
	streamer  domain.ChatStreamer
	practicum *usecase.PracticumService
	api       *apiclient.Client

	mode    domain.MentorMode
	task    domain.PracticumTask
	history []domain.ChatMessage

	// set by /verify, consumed by discuss mode
	answer   string
	verified *domain.VerificationResult
}

func newStreamer(cfg config.ClientConfig) *chatstream.Client {
	return chatstream.NewClient(cfg.URL,
		chatstream.WithToken(cfg.Token),
		chatstream.WithMaxBuffer(cfg.StreamBufferLimit),
	)
}

func (s *session) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprintf(s.out, "[%s] > ", s.mode)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return nil
			}
			if quit := s.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handle runs one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.ask(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/exit", "/quit":
		return true
	case "/help":
		fmt.Fprintln(s.out, help)
	case "/reset":
		s.history = nil
		s.answer, s.verified = "", nil
		fmt.Fprintln(s.out, "Conversation cleared.")
	case "/mode":
		m := domain.MentorMode(arg)
		if !m.Valid() {
			fmt.Fprintf(s.out, "Unknown mode %q.\n", arg)
			return false
		}
		s.mode = m
		fmt.Fprintf(s.out, "Mode: %s\n", m)
	case "/verify":
		s.verify(ctx, arg)
	case "/progress":
		s.showProgress(ctx)
	case "/methods":
		s.showMethods(ctx)
	default:
		fmt.Fprintf(s.out, "Unknown command %s, try /help.\n", cmd)
	}
	return false
}

// ask sends one user turn and streams the reply. A failed turn keeps the
// partial reply on screen but leaves it out of the history.
func (s *session) ask(ctx context.Context, text string) {
	s.history = append(s.history, domain.ChatMessage{Role: domain.UserRole, Content: text})
	show := func(delta string) { fmt.Fprint(s.out, delta) }

	var reply string
	var err error
	if s.mode == domain.ModeDiscuss && s.verified != nil {
		reply, err = s.practicum.Discuss(ctx, s.task, s.answer, *s.verified, s.history, show)
	} else {
		reply, err = s.chat(ctx, show)
	}
	fmt.Fprintln(s.out)

	if err != nil {
		s.notify(err)
		s.history = s.history[:len(s.history)-1]
		return
	}
	s.history = append(s.history, domain.ChatMessage{Role: domain.AssistantRole, Content: reply})
}

func (s *session) chat(ctx context.Context, onDelta func(string)) (string, error) {
	var sb strings.Builder
	var streamErr error

	mc := s.mentorContext()
	err := s.streamer.StreamChat(ctx, domain.StreamRequest{Messages: s.history, Context: mc}, domain.StreamHandlers{
		OnDelta: func(text string) {
			sb.WriteString(text)
			onDelta(text)
		},
		OnError: func(err error) { streamErr = err },
	})
	if streamErr != nil {
		err = streamErr
	}
	return sb.String(), err
}

func (s *session) mentorContext() *domain.MentorContext {
	return &domain.MentorContext{
		Mode:            s.mode,
		TaskTitle:       s.task.Title,
		TaskDescription: s.task.Description,
		TaskDifficulty:  s.task.Difficulty,
		SuccessCriteria: s.task.SuccessCriteria,
	}
}

func (s *session) verify(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(s.out, "Usage: /verify <file>")
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		s.notify(err)
		return
	}

	v, err := s.practicum.Verify(ctx, s.task, string(raw), func(delta string) { fmt.Fprint(s.out, delta) })
	fmt.Fprintln(s.out)
	if err != nil {
		s.notify(err)
		return
	}

	if v.Result.Passed {
		fmt.Fprintln(s.out, "Verdict: PASSED")
	} else {
		fmt.Fprintln(s.out, "Verdict: NOT PASSED")
	}
	for _, sg := range v.Result.Suggestions {
		fmt.Fprintln(s.out, "  * "+sg)
	}
	if v.SaveErr != nil {
		fmt.Fprintln(s.out, "Warning: progress was not saved:", v.SaveErr)
	}

	s.answer = strings.TrimSpace(string(raw))
	s.verified = &v.Result
	s.history = nil
	s.mode = domain.ModeDiscuss
	fmt.Fprintln(s.out, "Switched to discuss mode; ask about the review.")
}

func (s *session) showProgress(ctx context.Context) {
	progress, err := s.api.ListProgress(ctx)
	if err != nil {
		s.notify(err)
		return
	}
	if len(progress) == 0 {
		fmt.Fprintln(s.out, "No attempts yet.")
	}
	for _, p := range progress {
		state := "in progress"
		if p.Completed {
			state = "completed"
		}
		fmt.Fprintf(s.out, "  %-24s %-12s attempts: %d\n", p.TaskID, state, p.Attempts)
	}
}

func (s *session) showMethods(ctx context.Context) {
	methods, err := s.api.ListMethods(ctx)
	if err != nil {
		s.notify(err)
		return
	}
	for _, m := range methods {
		fmt.Fprintf(s.out, "  %s [%s]\n", m.Title, strings.Join(m.Tags, ", "))
	}
}

func (s *session) notify(err error) {
	var httpErr *chatstream.HTTPError
	switch {
	case errors.As(err, &httpErr):
		fmt.Fprintf(s.out, "! mentor unavailable: %s\n", httpErr.Message)
	case errors.Is(err, domain.ErrAnswerTooShort):
		fmt.Fprintf(s.out, "! answer must be at least %d characters\n", domain.MinAnswerLength)
	default:
		fmt.Fprintln(s.out, "!", err)
	}
}

func splitCriteria(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ";") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
