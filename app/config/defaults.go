package config

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Feeds: []string{
			"https://spbnews78.ru/rss.xml",
			"https://www.kommersant.ru/RSS/news.xml",
			"https://www.woman.ru/rss-feeds/rss.xml",
		},
		MatchMode: MatchSubstring,
		Settings:  Settings{Timeout: 30},
		Categories: []Category{
			{
				Name:        "спорт",
				Destination: "@spgnovosti",
				Link:        "https://t.me/spgnovosti",
				Synonyms:    []string{"спорт", "футбол", "хоккей", " теннис", "баскетбол", "олимпиада", "лыжи", "мяч", "шайба", "бокс"},
			},
			{
				Name:        "экономика",
				Destination: "@ekon_cnh",
				Link:        "https://t.me/ekon_cnh",
				Synonyms:    []string{"экономика", "финансы", "бизнес", "рынок", "инвестиции", "деньги", "банк"},
			},
			{
				Name:        "технологии",
				Destination: "@th_hanel",
				Link:        "https://t.me/th_hanel",
				Synonyms:    []string{"технологии", "гаджеты", "it", "программирование", "искусственный интеллект", "ai"},
			},
			{
				Name:        "политика",
				Destination: "@pol_cnh",
				Link:        "https://t.me/pol_cnh",
				Synonyms:    []string{"политика", "правительство", "президент", "выборы", "парламент", "власть", "губернатор"},
			},
			{
				Name:        "разное",
				Destination: "@kras_cht",
				Link:        "https://t.me/kras_cht",
				Synonyms: []string{
					"красота", "косметика", "артисты", "кино", "шоу", "театр", "здоровье", "жена", "измена",
					"рецепты", "макияж", "крем", "укладка", "морщины", "прыщи", "глаза", "муж", "нос",
				},
			},
		},
	}
}
