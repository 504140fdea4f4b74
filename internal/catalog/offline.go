package catalog

// builtinCourses returns the built-in offline dataset served when every
// other catalog source has failed. It mirrors the platform's starter
// catalog so course matching still produces sensible redirects.
func builtinCourses() []Course {
	return []Course{
		{
			ID:          "offline-js-001",
			Title:       "JavaScript pour débutants",
			Description: "Les bases du langage JavaScript : variables, fonctions, DOM et événements.",
			ModuleID:    "offline-mod-web",
			CategoryID:  "javascript",
		},
		{
			ID:          "offline-py-001",
			Title:       "Python fondamentaux",
			Description: "Introduction à Python : syntaxe, structures de données et scripts.",
			ModuleID:    "offline-mod-prog",
			CategoryID:  "python",
		},
		{
			ID:          "offline-html-001",
			Title:       "HTML et CSS : créer votre premier site",
			Description: "Structure HTML, mise en forme CSS et responsive design.",
			ModuleID:    "offline-mod-web",
			CategoryID:  "html",
		},
		{
			ID:          "offline-sql-001",
			Title:       "SQL et bases de données relationnelles",
			Description: "Requêtes SQL, jointures et modélisation de base de données.",
			ModuleID:    "offline-mod-data",
			CategoryID:  "sql",
		},
		{
			ID:          "offline-java-001",
			Title:       "Java orienté objet",
			Description: "Classes, interfaces et collections en Java.",
			ModuleID:    "offline-mod-prog",
			CategoryID:  "java",
		},
		{
			ID:          "offline-docker-001",
			Title:       "Docker pour le développement",
			Description: "Conteneurs, images et docker-compose pour vos projets.",
			ModuleID:    "offline-mod-devops",
			CategoryID:  "docker",
		},
	}
}
