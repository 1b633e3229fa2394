package handlers

import (
	"context"

	"donaplus/internal/auth"
	"donaplus/internal/resources"
)

// Store хранилище, которое нужно обработчикам: коллекции ресурсов и профили сессии
type Store interface {
	resources.DonationStore
	resources.CenterStore
	resources.DeliveryStore
	resources.ProfileStore
	resources.CategoryStore
	resources.StatsStore
	resources.ConversationStore
	resources.MessageStore
	auth.ProfileStore

	Ping(ctx context.Context) error
}
