package handler

import (
	"github.com/samber/lo"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/service"
)

func toAPIConversationList(list *models.ConversationList) api.ConversationList {
	return api.ConversationList{
		Items:      lo.Map(list.Items, func(s models.ConversationSummary, _ int) api.ConversationSummary { return toAPISummary(s) }),
		NextCursor: lo.EmptyableToPtr(list.NextCursor),
	}
}

func toAPISummary(s models.ConversationSummary) api.ConversationSummary {
	out := api.ConversationSummary{
		Id:                 s.ID,
		Title:              s.Title,
		LastMessagePreview: s.LastMessagePreview,
		UnreadCount:        s.UnreadCount,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		CustomerId:         s.CustomerID,
		AgentId:            s.AgentID,
		AgentName:          s.AgentName,
		CustomerPhone:      lo.EmptyableToPtr(s.CustomerPhone),
		CustomerEmail:      lo.EmptyableToPtr(s.CustomerEmail),
		Status:             api.ConversationStatus(s.Status),
		Priority:           api.ConversationPriority(s.Priority),
		IsPinned:           s.IsPinned,
		IsNew:              s.IsNew,
		IsUnreplied:        s.IsUnreplied,
		ProxyAddress:       lo.EmptyableToPtr(s.ProxyAddress),
		NumberId:           s.NumberID,
		NumberName:         lo.EmptyableToPtr(s.NumberName),
	}
	if s.Degraded {
		out.Degraded = lo.ToPtr(true)
	}
	return out
}

func toAPIConversationDetail(d *service.ConversationDetail) api.ConversationDetail {
	out := api.ConversationDetail{
		Summary:      toAPISummary(d.Summary),
		Customer:     toAPICustomer(d.Customer),
		Participants: lo.Map(d.Participants, func(p models.Participant, _ int) api.Participant { return toAPIParticipant(p) }),
	}
	if d.Agent != nil {
		out.Agent = &api.Agent{
			Id:         d.Agent.ID,
			Name:       d.Agent.Name,
			Department: d.Agent.Department,
			Skills:     lo.Ternary(d.Agent.Skills == nil, []string{}, d.Agent.Skills),
		}
	}
	if d.Number != nil {
		n := toAPINumber(*d.Number)
		out.Number = &n
	}
	if d.Mode != nil {
		out.MessagingMode = toAPIMessagingMode(d.Mode)
	}
	return out
}

func toAPICustomer(c models.Customer) api.Customer {
	return api.Customer{
		Id:        c.ID,
		Name:      c.Name,
		Phone:     lo.EmptyableToPtr(c.Phone),
		Email:     lo.EmptyableToPtr(c.Email),
		AvatarUrl: lo.EmptyableToPtr(c.AvatarURL),
		LastSeen:  c.LastSeen,
		Source:    api.CustomerSource(c.Source),
	}
}

func toAPIParticipant(p models.Participant) api.Participant {
	displayName := p.Attributes.DisplayName
	if displayName == "" && p.Binding != nil {
		displayName = p.Binding.Name
	}
	return api.Participant{
		Sid:          p.SID,
		Identity:     lo.EmptyableToPtr(p.Identity),
		Address:      lo.EmptyableToPtr(p.Address()),
		ProxyAddress: lo.EmptyableToPtr(p.ProxyAddress()),
		DisplayName:  lo.EmptyableToPtr(displayName),
		Role:         api.ParticipantRole(p.Role),
	}
}

func toAPINumber(n models.ConfiguredNumber) api.Number {
	return api.Number{
		Id:             n.ID,
		RoutingAddress: n.RoutingAddress,
		DisplayName:    n.DisplayName,
		Department:     lo.EmptyableToPtr(n.Department),
	}
}

func toAPIMessagingMode(m *service.MessagingMode) api.MessagingMode {
	return api.MessagingMode{
		OutsideWindow:         m.OutsideWindow,
		TemplateRequired:      m.TemplateRequired,
		LastCustomerMessageAt: m.LastCustomerMessageAt,
		WindowExpiresAt:       m.WindowExpiresAt,
	}
}

func toAPIMessagePage(p *models.MessagePage) api.MessagePage {
	return api.MessagePage{
		Messages:     lo.Map(p.Messages, func(m models.MessageView, _ int) api.Message { return toAPIMessage(m) }),
		NextBefore:   p.NextBefore,
		NextBeforeId: p.NextBeforeID,
		Source:       api.MessagePageSource(p.Source),
	}
}

func toAPIMessage(m models.MessageView) api.Message {
	out := api.Message{
		Id:                 m.ID,
		ConversationId:     m.ConversationID,
		SenderType:         api.MessageSenderType(m.SenderType),
		SenderId:           m.SenderID,
		Content:            m.Content,
		CreatedAt:          m.CreatedAt,
		ProviderMessageSid: m.ProviderMessageSID,
		Media: lo.Map(m.Media, func(media models.Media, _ int) api.MessageMedia {
			return api.MessageMedia{
				Url:         media.URL,
				ContentType: media.ContentType,
				Filename:    lo.EmptyableToPtr(media.Filename),
			}
		}),
	}
	if m.DeliveryStatus != nil {
		status := api.DeliveryStatus(*m.DeliveryStatus)
		out.DeliveryStatus = &status
	}
	return out
}
