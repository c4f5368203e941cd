package main

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/jangala-dev/tinygo-usiuart/echo"
	"github.com/jangala-dev/tinygo-usiuart/sim"
)

// session is a running link with chip B serving the echo application and
// chip A acting as the terminal.
type session struct {
	link   *sim.Link
	ctx    context.Context
	cancel func()
	done   chan struct{}
}

func newSession() (*session, error) {
	t, err := lineTiming()
	if err != nil {
		return nil, err
	}
	l, err := sim.NewLink(t, lineOpts.latency)
	if err != nil {
		return nil, err
	}

	var period time.Duration
	if lineOpts.speed > 0 {
		period = time.Duration(float64(sim.TickPeriod(lineOpts.clock, lineOpts.prescaler)) / lineOpts.speed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{link: l, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		err := l.Bench.Run(ctx, period)
		glog.V(1).Infof("bench stopped after %d ticks: %v", l.Bench.Now(), err)
	}()
	go echo.Serve(ctx, l.DB)
	return s, nil
}

// exchange sends c from A and collects the echo reply.
func (s *session) exchange(c byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := s.link.DA.SendByteContext(ctx, c); err != nil {
		return nil, fmt.Errorf("send %q: %w", c, err)
	}
	reply := make([]byte, 0, len(echo.Prompt)+1)
	for len(reply) < cap(reply) {
		b, err := s.link.DA.ReceiveByteContext(ctx)
		if err != nil {
			return reply, fmt.Errorf("reply to %q: %w", c, err)
		}
		reply = append(reply, b)
	}
	return reply, nil
}

// replyTimeout is generous for one exchange at the configured speed.
func (s *session) replyTimeout() time.Duration {
	frames := len(echo.Prompt) + 4
	ticks := frames * s.link.FrameTicks() * 2
	if lineOpts.speed <= 0 {
		return time.Second
	}
	d := time.Duration(float64(ticks) * float64(sim.TickPeriod(lineOpts.clock, lineOpts.prescaler)) / lineOpts.speed)
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (s *session) Close() {
	s.cancel()
	<-s.done
}
