package subscriber

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/x-xyz/musicnft/base/ctx"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain/event"
)

// EmbedSender is the part of *discordgo.Session used to post notifications
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type DiscordCfg struct {
	Sender    EmbedSender
	ChannelId string
	// AssetUrl is formatted with the token id
	AssetUrl       string
	PriceFormatter pricefomatter.PriceFormatter
	CurrencySymbol string
}

type discordSubscriber struct {
	cfg DiscordCfg
}

// NewDiscordSession opens a bot session for the discord subscriber
func NewDiscordSession(botKey string) (*discordgo.Session, error) {
	return discordgo.New(fmt.Sprintf("Bot %s", botKey))
}

// NewDiscordSubscriber posts an "Item sold!" embed for every sale
func NewDiscordSubscriber(cfg DiscordCfg) event.Subscriber {
	return &discordSubscriber{cfg}
}

func (s *discordSubscriber) Name() string {
	return "discord"
}

func (s *discordSubscriber) Notify(c ctx.Ctx, e *event.Event) error {
	if e.Type != event.TypeSold || e.Receipt == nil || e.Token == nil {
		return nil
	}
	if _, err := s.cfg.Sender.ChannelMessageSendEmbed(s.cfg.ChannelId, s.soldEmbed(e)); err != nil {
		return err
	}
	return nil
}

func (s *discordSubscriber) soldEmbed(e *event.Event) *discordgo.MessageEmbed {
	t, r := e.Token, e.Receipt

	imageUrl := t.CoverURI
	if strings.HasPrefix(imageUrl, "ipfs://") {
		imageUrl = strings.Replace(imageUrl, "ipfs://", "https://ipfs.io/ipfs/", 1)
	}

	return &discordgo.MessageEmbed{
		Title:       "Item sold!",
		Description: fmt.Sprintf(s.cfg.AssetUrl, t.Id),
		Image: &discordgo.MessageEmbedImage{
			URL: imageUrl,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Track", Value: fmt.Sprintf("%s - %s", t.Title, t.Artist)},
			{Name: "Seller", Value: string(r.Seller)},
			{Name: "Buyer", Value: string(r.Buyer)},
			{Name: "Price", Value: fmt.Sprintf("%s %s", s.cfg.PriceFormatter.FormatDisplay(r.Price), s.cfg.CurrencySymbol)},
			{Name: "Royalty", Value: fmt.Sprintf("%s %s", s.cfg.PriceFormatter.FormatDisplay(r.RoyaltyAmount), s.cfg.CurrencySymbol)},
		},
	}
}
