package resume

// DefaultVocabulary is the reference list of skills matched against the full resume
// text. Entries are in their canonical casing.
var DefaultVocabulary = []string{
	// Programming languages
	"Python", "Java", "JavaScript", "C++", "C#", "Ruby", "PHP", "Swift", "Go", "Rust",
	"TypeScript", "Kotlin", "Scala", "R", "MATLAB", "Perl", "Bash", "Shell",

	// Web development
	"HTML", "CSS", "React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask",
	"Spring", "ASP.NET", "Laravel", "Ruby on Rails", "jQuery", "Bootstrap", "Tailwind",

	// Data science and ML
	"Machine Learning", "Deep Learning", "NLP", "Computer Vision", "Data Analysis",
	"Data Science", "Statistics", "Regression", "Classification", "Clustering",
	"Neural Networks", "TensorFlow", "PyTorch", "Keras", "scikit-learn", "Pandas",
	"NumPy", "SciPy", "NLTK", "spaCy", "Matplotlib", "Seaborn", "Tableau", "Power BI",

	// Cloud and DevOps
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "CI/CD", "Git", "GitHub",
	"Terraform", "Ansible", "Chef", "Puppet", "Prometheus", "Grafana", "ELK Stack",

	// Databases
	"SQL", "MySQL", "PostgreSQL", "MongoDB", "Redis", "Cassandra", "Oracle",
	"SQLite", "NoSQL", "DynamoDB", "Firebase", "Elasticsearch",

	// Other technical skills
	"REST API", "GraphQL", "Microservices", "Agile", "Scrum", "Kanban", "JIRA",
	"Object-Oriented Programming", "Functional Programming", "Serverless",
	"Big Data", "ETL", "Hadoop", "Spark", "Kafka", "Linux", "Unix", "Windows",
	"Cybersecurity", "Blockchain", "IoT",

	// Soft skills
	"Leadership", "Communication", "Teamwork", "Problem Solving", "Critical Thinking",
	"Project Management",
}
