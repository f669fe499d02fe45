package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger metrics
var (
	CreditsCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmetics_credits_credited_total",
			Help: "Total credits added to player balances",
		},
	)

	CreditsDebited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmetics_credits_debited_total",
			Help: "Total credits removed from player balances",
		},
	)
)

// Crate metrics
var (
	CratesPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmetics_crates_purchased_total",
			Help: "Crates purchased, by tier",
		},
		[]string{"tier"},
	)

	CratesOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmetics_crates_opened_total",
			Help: "Crates opened, by tier",
		},
		[]string{"tier"},
	)

	RewardsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmetics_rewards_granted_total",
			Help: "Crate rewards applied, by reward type",
		},
		[]string{"type"},
	)
)

// Rental metrics
var (
	RentalsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmetics_rentals_started_total",
			Help: "Rental leases created",
		},
	)

	RentalsExtended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmetics_rentals_extended_total",
			Help: "Rental leases extended",
		},
	)

	RentalsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmetics_rentals_expired_total",
			Help: "Rental leases removed by the expiration sweep",
		},
	)
)

// Activation metrics
var (
	Activations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmetics_activations_total",
			Help: "Cosmetic activations, by category",
		},
		[]string{"category"},
	)

	Deactivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmetics_deactivations_total",
			Help: "Cosmetic deactivations, by category",
		},
		[]string{"category"},
	)
)
