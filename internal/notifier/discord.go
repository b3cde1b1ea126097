package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goplaynow/playdate-api/internal/models"
	"go.uber.org/zap"
)

// messageSender is the part of *discordgo.Session the notifier uses.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   messageSender
	channelID string
	loc       *time.Location
	logger    *zap.Logger
}

func NewDiscordNotifier(session *discordgo.Session, channelID string, loc *time.Location, logger *zap.Logger) *DiscordNotifier {
	n := &DiscordNotifier{channelID: channelID, loc: loc, logger: logger}
	if session != nil {
		n.session = session
	}
	return n
}

func (n *DiscordNotifier) PlaydateJoined(_ context.Context, playdate models.Playdate, parent models.ParentProfile, children []models.Child) error {
	message := fmt.Sprintf("🎉 **New Playmates**\n**Playdate:** %s\n**Parent:** %s\n**Children:** %s\n**When:** %s",
		playdate.Title,
		parentName(parent),
		strings.Join(childNames(children), ", "),
		n.when(playdate),
	)
	return n.send(message)
}

func (n *DiscordNotifier) PlaydateCancelled(_ context.Context, playdate models.Playdate, attendees []models.ParentProfile) error {
	message := fmt.Sprintf("😢 **Playdate Cancelled**\n**Playdate:** %s\n**When:** %s\n**Families affected:** %d",
		playdate.Title,
		n.when(playdate),
		len(attendees),
	)
	return n.send(message)
}

func (n *DiscordNotifier) when(p models.Playdate) string {
	loc := n.loc
	if loc == nil {
		loc = time.UTC
	}
	start := p.StartTime.In(loc)
	return fmt.Sprintf("%s %s - %s", start.Format("2006-01-02"), start.Format("15:04"), p.EndTime.In(loc).Format("15:04"))
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		if n.logger != nil {
			n.logger.Error("failed to send discord message", zap.Error(err))
		}
		return err
	}
	return nil
}
