package models

import (
	"time"

	"github.com/google/uuid"
)

type CommunityCategory string

const (
	CommunityCategoryGame        CommunityCategory = "game"
	CommunityCategoryAge         CommunityCategory = "age"
	CommunityCategoryRegion      CommunityCategory = "region"
	CommunityCategoryLanguage    CommunityCategory = "language"
	CommunityCategoryCompetitive CommunityCategory = "competitive"
	CommunityCategoryCasual      CommunityCategory = "casual"
	CommunityCategoryOther       CommunityCategory = "other"
)

func (c CommunityCategory) Valid() bool {
	switch c {
	case CommunityCategoryGame, CommunityCategoryAge, CommunityCategoryRegion,
		CommunityCategoryLanguage, CommunityCategoryCompetitive,
		CommunityCategoryCasual, CommunityCategoryOther:
		return true
	}
	return false
}

type AgeGroup string

const (
	AgeGroupKids   AgeGroup = "kids"
	AgeGroupTeens  AgeGroup = "teens"
	AgeGroupAdults AgeGroup = "adults"
	AgeGroupAll    AgeGroup = "all"
)

type MarketplaceCategory string

const (
	MarketplaceCategoryGames        MarketplaceCategory = "games"
	MarketplaceCategoryConsoles     MarketplaceCategory = "consoles"
	MarketplaceCategoryAccessories  MarketplaceCategory = "accessories"
	MarketplaceCategoryCollectibles MarketplaceCategory = "collectibles"
	MarketplaceCategoryOther        MarketplaceCategory = "other"
)

type Community struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    CommunityCategory `json:"category"`
	Game        *string           `json:"game,omitempty"`
	AgeGroup    *AgeGroup         `json:"age_group,omitempty"`
	MemberCount int               `json:"member_count"`
	Avatar      *string           `json:"avatar,omitempty"`
	IsPrivate   bool              `json:"is_private"`
	CreatedAt   time.Time         `json:"created_at"`
}
