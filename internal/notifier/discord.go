package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers operational alerts. The engine only ever raises one:
// a post-commit overbooking detection, which should page an operator.
type Notifier interface {
	NotifyOverbooking(eventID uint, capacity, confirmed, overage int) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyOverbooking(eventID uint, capacity, confirmed, overage int) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("🚨 **Overbooking Alert**\n**Event:** %d\n**Capacity:** %d\n**Confirmed spots:** %d\n**Overage:** %d\nThe committed registrations exceed capacity. Manual follow-up required.",
		eventID,
		capacity,
		confirmed,
		overage,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
