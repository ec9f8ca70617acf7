package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/core/telegram/callbacks"
	"github.com/m3rciful/datebot/core/telegram/format"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/keyboard"
	"github.com/m3rciful/datebot/internal/storage/postgres"

	tele "gopkg.in/telebot.v4"
)

func (a *App) voteMarkup(postID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(postID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: a.t("buttons", "vote_like"), Unique: cbVote, Data: id + "|1"},
		{Text: a.t("buttons", "vote_dislike"), Unique: cbVote, Data: id + "|-1"},
	})
}

// onPost shows the oldest post the user has not voted on.
func (a *App) onPost(c tele.Context) error {
	return a.sendNextPost(c)
}

func (a *App) sendNextPost(c tele.Context) error {
	post, err := a.votes.NextPost(tghelpers.BuildContext(c), tghelpers.UserID(c))
	if isNotFound(err) {
		return tghelpers.SendText(c, a.t("messages", "no_posts"))
	}
	if err != nil {
		return a.fail(c, err)
	}
	text := fmt.Sprintf("*%s*\n\n%s", format.Escape(post.SourceName), format.Escape(post.Content))
	if post.PhotoRef != "" {
		return tghelpers.SendPhoto(c, post.PhotoRef, text, a.voteMarkup(post.ID))
	}
	return tghelpers.SendMD(c, text, a.voteMarkup(post.ID))
}

// onVote records a vote button tap and moves on to the next post.
func (a *App) onVote(c tele.Context) error {
	postID, value, err := callbacks.PayloadTwoInt64(c)
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), component, "vote.payload",
			slog.String("payload", callbacks.Payload(c)),
		)
		return c.Respond()
	}
	ctx := tghelpers.BuildContext(c)
	err = a.votes.RecordVote(ctx, tghelpers.UserID(c), postID, int(value))
	if errors.Is(err, postgres.ErrVoteValue) {
		return c.Respond()
	}
	if err != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: a.t("messages", "error")})
		return err
	}
	if err := c.Respond(&tele.CallbackResponse{Text: a.t("messages", "vote_saved")}); err != nil {
		logger.Debug(ctx, component, "callback.respond", slog.String("err", err.Error()))
	}
	if msg := c.Message(); msg != nil {
		if err := tghelpers.EditMarkup(c, msg, nil); err != nil {
			return err
		}
	}
	return a.sendNextPost(c)
}

// onStats shows the totals to the admin.
func (a *App) onStats(c tele.Context) error {
	s, err := a.votes.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return a.fail(c, err)
	}
	return tghelpers.SendText(c, a.texts.Resolvef("messages", "stats", s.Users, s.Votes, s.Posts))
}
