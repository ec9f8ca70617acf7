package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the outbound queue used by the send helpers. With a
// nil dispatcher every helper sends inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// submit runs the call on the chat's sender lane. wait blocks until the
// call finished so the caller can read its result.
func submit(c tele.Context, action, endpoint string, wait bool, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx := BuildContext(c)
	lane := ChatID(c)
	var err error
	if wait {
		err = disp.Do(ctx, lane, action, endpoint, run)
	} else {
		err = disp.Enqueue(ctx, lane, action, endpoint, run)
	}
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText queues plain text to the current chat.
func SendText(c tele.Context, text string, opts ...any) error {
	return submit(c, "send.text", "sendMessage", false, func() error {
		return c.Send(text, opts...)
	})
}

// SendMD queues Markdown text with an optional keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return SendText(c, text, opts)
}

// SendMenu sends text with an inline keyboard and returns the sent message
// so the caller can edit the keyboard later.
func SendMenu(c tele.Context, text string, markup *tele.ReplyMarkup) (*tele.Message, error) {
	var sent *tele.Message
	err := submit(c, "send.menu", "sendMessage", true, func() error {
		msg, err := c.Bot().Send(c.Recipient(), text, markup)
		sent = msg
		return err
	})
	return sent, err
}

// EditMarkup replaces the inline keyboard of msg.
func EditMarkup(c tele.Context, msg tele.Editable, markup *tele.ReplyMarkup) error {
	return submit(c, "edit.markup", "editMessageReplyMarkup", false, func() error {
		_, err := c.Bot().EditReplyMarkup(msg, markup)
		return err
	})
}

// SendAlbum queues up to ten photos by file id. caption goes on the first.
func SendAlbum(c tele.Context, fileIDs []string, caption string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	album := make(tele.Album, 0, len(fileIDs))
	for i, id := range fileIDs {
		p := &tele.Photo{File: tele.File{FileID: id}}
		if i == 0 {
			p.Caption = caption
		}
		album = append(album, p)
	}
	return submit(c, "send.album", "sendMediaGroup", false, func() error {
		return c.SendAlbum(album)
	})
}

// SendPhoto queues one photo by file id with a Markdown caption.
func SendPhoto(c tele.Context, fileID, caption string, markup *tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	return submit(c, "send.photo", "sendPhoto", false, func() error {
		return c.Send(photo, opts)
	})
}
