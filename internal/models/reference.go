package models

// Static reference lists offered to clients for profile and community forms.

var NintendoGames = []string{
	"Animal Crossing: New Horizons",
	"The Legend of Zelda: Breath of the Wild",
	"The Legend of Zelda: Tears of the Kingdom",
	"Super Mario Odyssey",
	"Mario Kart 8 Deluxe",
	"Super Smash Bros. Ultimate",
	"Pokémon Sword/Shield",
	"Pokémon Scarlet/Violet",
	"Splatoon 3",
	"Metroid Dread",
	"Fire Emblem: Three Houses",
	"Xenoblade Chronicles 3",
	"Kirby and the Forgotten Land",
	"Luigi's Mansion 3",
	"Mario Party Superstars",
	"New Super Mario Bros. U Deluxe",
	"Donkey Kong Country: Tropical Freeze",
	"Pikmin 4",
	"Other",
}

var Regions = []string{
	"North America",
	"Europe",
	"Asia",
	"Oceania",
	"South America",
	"Africa",
	"Global",
}

var AgeGroups = []AgeGroup{
	AgeGroupKids,
	AgeGroupTeens,
	AgeGroupAdults,
	AgeGroupAll,
}

var CommunityCategories = []CommunityCategory{
	CommunityCategoryGame,
	CommunityCategoryAge,
	CommunityCategoryRegion,
	CommunityCategoryLanguage,
	CommunityCategoryCompetitive,
	CommunityCategoryCasual,
	CommunityCategoryOther,
}

var MarketplaceCategories = []MarketplaceCategory{
	MarketplaceCategoryGames,
	MarketplaceCategoryConsoles,
	MarketplaceCategoryAccessories,
	MarketplaceCategoryCollectibles,
	MarketplaceCategoryOther,
}
