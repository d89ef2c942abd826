package deck

// SampleDecks returns the decks seeded into an empty catalog.
// Each call returns fresh slices.
func SampleDecks() []Deck {
	return []Deck{
		{
			Name:        "Basic Math",
			Description: "Fundamental math concepts",
			Cards: []Card{
				{ID: 1, Front: "What is a fraction?", Back: "A fraction represents a part of a whole. E.g. 1/2 means one of two equal parts."},
				{ID: 2, Front: "What is an equation?", Back: "An equation is a mathematical equality containing one or more variables. E.g. 2x + 3 = 7"},
				{ID: 3, Front: "What is perimeter?", Back: "Perimeter is the sum of all sides of a geometric figure."},
				{ID: 4, Front: "What is area?", Back: "Area is the measure of a figure's surface, expressed in square units."},
				{ID: 5, Front: "What are prime numbers?", Back: "Prime numbers are numbers greater than 1 divisible only by 1 and themselves. E.g. 2, 3, 5, 7, 11"},
			},
		},
		{
			Name:        "Science - Human Body",
			Description: "Basic anatomy",
			Cards: []Card{
				{ID: 6, Front: "How many bones does the adult human body have?", Back: "The adult human body has about 206 bones."},
				{ID: 7, Front: "What does the heart do?", Back: "The heart pumps blood through the body, carrying oxygen and nutrients to the cells."},
				{ID: 8, Front: "What are the lungs?", Back: "The lungs are the organs of respiration, exchanging oxygen and carbon dioxide."},
				{ID: 9, Front: "What is the largest organ of the body?", Back: "The skin is the largest organ of the human body."},
				{ID: 10, Front: "How many liters of blood circulate in the body?", Back: "An adult has about 5 liters of blood circulating."},
			},
		},
		{
			Name:        "History of Brazil",
			Description: "Key events",
			Cards: []Card{
				{ID: 11, Front: "When did the Portuguese reach Brazil?", Back: "On April 22, 1500, with Pedro Álvares Cabral."},
				{ID: 12, Front: "When was independence proclaimed?", Back: "On September 7, 1822, by Dom Pedro I."},
				{ID: 13, Front: "When was slavery abolished?", Back: "On May 13, 1888, by the Lei Áurea signed by Princess Isabel."},
				{ID: 14, Front: "When was the Republic proclaimed?", Back: "On November 15, 1889, by Marshal Deodoro da Fonseca."},
				{ID: 15, Front: "Who was Tiradentes?", Back: "A dentist and soldier who led the Inconfidência Mineira, a movement for Brazilian independence."},
			},
		},
	}
}
