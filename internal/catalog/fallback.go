package catalog

// Substitute data used when the provider cannot be reached and no snapshot of
// an earlier successful load exists.
var fallbackCategories = []Category{
	{ID: "1", Name: "Fruit Tree"},
	{ID: "2", Name: "Flowering Tree"},
	{ID: "3", Name: "Shade Tree"},
	{ID: "4", Name: "Medicinal Tree"},
	{ID: "5", Name: "Timber Tree"},
	{ID: "6", Name: "Evergreen Tree"},
	{ID: "7", Name: "Ornamental Plant"},
	{ID: "8", Name: "Bamboo"},
	{ID: "9", Name: "Climber"},
	{ID: "10", Name: "Aquatic Plant"},
}

var fallbackProducts = []Product{
	{
		ID:           "1",
		Name:         "Mango Tree",
		ImageURL:     "https://i.ibb.co.com/cSQdg7tf/mango-min.jpg",
		Description:  "A fast-growing tropical tree that produces delicious, juicy mangoes during summer. Its dense green canopy offers shade.",
		CategoryName: "Fruit Tree",
		Price:        500,
	},
	{
		ID:           "2",
		Name:         "Guava Tree",
		ImageURL:     "https://i.ibb.co.com/WNbbx3rn/guava-min.jpg",
		Description:  "A hardy fruit tree that grows in various climates, yielding guavas packed with Vitamin C.",
		CategoryName: "Fruit Tree",
		Price:        350,
	},
	{
		ID:           "4",
		Name:         "Gulmohar",
		ImageURL:     "https://i.ibb.co.com/1YzsVWjm/Gulmohar-min.jpg",
		Description:  "Known as the 'Flame of the Forest', this tree bursts into a vibrant display of red flowers every summer.",
		CategoryName: "Flowering Tree",
		Price:        400,
	},
}

// FallbackCategories returns a fresh copy of the substitute category list.
func FallbackCategories() []Category {
	return append([]Category(nil), fallbackCategories...)
}

// FallbackProducts returns a fresh copy of the substitute product list.
func FallbackProducts() []Product {
	return append([]Product(nil), fallbackProducts...)
}
