package service

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/transcript-player/internal/api"
	"github.com/airenas/transcript-player/internal/timeline"
	"github.com/airenas/transcript-player/internal/translate"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const writeTimeout = 10 * time.Second

type data struct {
	t   int
	msg []byte
}

// session is one connected player: its own highlight state over the shared index and cache
type session struct {
	id     string
	conn   *websocket.Conn
	syncer *timeline.Synchronizer
	tr     Translator
	lang   string

	wLock sync.Mutex

	hLock   sync.Mutex
	hovered string

	wg sync.WaitGroup
}

func newSession(conn *websocket.Conn, data *Data, lang string) *session {
	return &session{
		id:     ulid.Make().String(),
		conn:   conn,
		syncer: timeline.NewSynchronizer(data.Index, data.AutoScroll),
		tr:     data.Translator,
		lang:   lang,
	}
}

func (s *session) run(ctx context.Context) error {
	goapp.Log.Info().Str("session", s.id).Str("lang", s.lang).Msg("player connected")
	ctx, cf := context.WithCancel(ctx)
	defer func() {
		cf()
		s.wg.Wait()
		goapp.Log.Info().Str("session", s.id).Msg("player disconnected")
	}()

	readCh := readWebSocket(ctx, s.conn)
	for {
		select {
		case <-ctx.Done():
			goapp.Log.Info().Msg("context canceled")
			return nil
		case d, ok := <-readCh:
			if !ok {
				return nil
			}
			if d.t != websocket.TextMessage {
				continue
			}
			if err := s.process(ctx, d.msg); err != nil {
				goapp.Log.Error().Err(err).Str("session", s.id).Msg("write error")
				return nil
			}
		}
	}
}

func (s *session) process(ctx context.Context, msg []byte) error {
	goapp.Log.Trace().Str("msg", string(msg)).Send()
	var in api.EventMsg
	if err := json.Unmarshal(msg, &in); err != nil {
		goapp.Log.Warn().Err(err).Str("session", s.id).Msg("bad message")
		return s.write(&api.ErrorMsg{Event: api.EventError, Error: "bad message"})
	}
	switch in.Event {
	case api.EventPosition:
		return s.write(&api.StateMsg{Event: api.EventState, Change: s.syncer.Update(in.Time)})
	case api.EventHover:
		if in.ID == "" {
			return s.write(&api.ErrorMsg{Event: api.EventError, Error: "no id"})
		}
		return s.hover(ctx, in.ID, in.Word)
	case api.EventLeave:
		s.hLock.Lock()
		if s.hovered == in.ID {
			s.hovered = ""
		}
		s.hLock.Unlock()
		return nil
	}
	return s.write(&api.ErrorMsg{Event: api.EventError, Error: "unknown event '" + in.Event + "'"})
}

func (s *session) hover(ctx context.Context, id, word string) error {
	s.hLock.Lock()
	s.hovered = id
	s.hLock.Unlock()

	res := s.tr.Lookup(s.lang, word)
	if err := s.write(translationMsg(id, word, res)); err != nil {
		return err
	}
	if res.Status != translate.Pending {
		return nil
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		final := res.Wait(ctx)
		if final.Status == translate.Pending {
			return
		}
		if !s.isHovered(id) {
			goapp.Log.Debug().Str("session", s.id).Str("id", id).Msg("discard stale translation")
			return
		}
		if err := s.write(translationMsg(id, word, final)); err != nil {
			goapp.Log.Warn().Err(err).Str("session", s.id).Msg("write translation")
		}
	}()
	return nil
}

func (s *session) isHovered(id string) bool {
	s.hLock.Lock()
	defer s.hLock.Unlock()
	return s.hovered == id
}

func (s *session) write(v any) error {
	s.wLock.Lock()
	defer s.wLock.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func translationMsg(id, word string, res *translate.Result) *api.TranslationMsg {
	w := res.Word
	if w == "" {
		w = word
	}
	return &api.TranslationMsg{Event: api.EventTranslation, ID: id, Word: w, Status: res.Status.Name(), Text: res.Text}
}

func readWebSocket(ctx context.Context, in *websocket.Conn) <-chan data {
	resCh := make(chan data)
	go func() {
		defer close(resCh)
		defer goapp.Log.Debug().Msg("read routine ended")
		for {
			mType, message, err := in.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
					errors.Is(err, net.ErrClosed) {
					goapp.Log.Info().Msg("connection closed")
					return
				}
				goapp.Log.Error().Err(err).Send()
				return
			}
			select {
			case resCh <- data{t: mType, msg: message}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return resCh
}
