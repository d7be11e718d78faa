package controllers

import (
	"context"

	"stockbot/src/models"
	"stockbot/src/services"
)

type SymbolLister interface {
	ListSymbols(ctx context.Context) ([]models.HeldSymbol, error)
}

type Controller struct {
	Holdings SymbolLister
	Oracle   services.PriceOracle
}

func NewController(holdings SymbolLister, oracle services.PriceOracle) *Controller {
	return &Controller{Holdings: holdings, Oracle: oracle}
}
