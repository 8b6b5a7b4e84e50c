package render

import "strings"

// Introduction is shown above the section navigation.
const Introduction = `This report comprises three distinct sections. The initial segment delineates the activity levels exhibited by the GitHub repositories. The subsequent section provides insights into contributor distribution, while the final part delves into exploring correlations among the various features.`

const topNarrative = `This horizontal bar chart displays the top 10 repositories based on their stars, forks, issues, pull requests, contributors, and language count.

The number of stars attributed to a repository is a measure of its popularity or perceived significance within the GitHub community.

Forks in GitHub repositories are indicative of community involvement, interest, and the level of usage a project receives.

Issues count indicates the number of reported problems, bugs, or suggested enhancements within the repository.

Pull requests count reflects the number of times someone has proposed changes to a repository. It showcases how open the repository is to collaboration and contributions.

A higher contributors count typically suggests a more diverse range of contributions, potentially representing a healthy and engaged community.

The language count identifies the technology stack and helps understand the tools and languages utilized.`

// narratives holds the static commentary for each chart, keyed by chart ID.
var narratives = map[string]string{
	"activity-totals": `This bar chart shows the total count of stars, forks, issues, and pull requests across all repositories.
It provides an overview of the activity level of the repositories.`,

	"stars-distribution": `This histogram illustrates the distribution of stars count across GitHub repositories.

Upon examining the distribution, it's evident that the majority of repositories fall within the range of 0 to 50 stars, indicating a prevalence of repositories with comparatively lower star counts. However, as the star count increases, the frequency of repositories sharply decreases, suggesting a rarity of repositories with higher star counts.

Notably, there is a noticeable scarcity of repositories that have accumulated more than 400 stars, signifying a significant threshold where repositories garnering such high levels of recognition become less common.

This distribution pattern indicates that while a considerable number of repositories exist with relatively lower star counts, repositories achieving a higher number of stars are more infrequent, showcasing the selectivity and competitive nature of gaining substantial attention within the GitHub ecosystem.`,

	"forks-distribution": `This histogram showcases the distribution of fork counts among GitHub repositories.

The distribution pattern of fork counts mirrors that of the stars chart. A majority of GitHub repositories, over 700 in number, exhibit a range of stars between 0 to 50, suggesting a prevalent trend in the platform. Notably, there is a scarcity of repositories with fork counts exceeding 200.

The similarity in distribution patterns between stars and forks signifies a common trend in repository engagement. This overlap in distributions might indicate a correlation between the level of interest in a repository, as depicted by stars, and the level of community engagement, often represented by forks.

It's crucial to note that while high stars imply popularity or interest, high forks may signify active contribution and collaboration within the repository's community.`,

	"top-popular": `This chart represents the distribution of fork counts for the top 10 popular repositories. It's notable that the majority of these repositories exhibit lower fork counts. This observation suggests a potential area for enhancement in the community's overall activity level. To amplify community engagement, it becomes imperative for community managers to strategize and implement methods that encourage increased user contributions to repositories.

The prevalence of repositories with lower fork counts among the top 10 suggests a certain limitation in community involvement or contributions. This scenario could be improved by fostering an environment that encourages collaboration, active participation, and contribution from users.

A diversified and engaged community actively contributing to repositories can foster innovation, facilitate problem-solving, and enhance the overall growth and health of the GitHub community.`,

	"contribution-types": `This pie chart illustrates the distribution of contribution types, specifically pull requests and issues.
It gives an overview of the contribution dynamics within the repositories. It can be seen from the chart that 66.9% of the contributions are from issues and 33.1% from pull requests.

1. Project Activity and Issue Management: More contributions from issues might indicate that there are many users engaging with the project by reporting problems or suggesting improvements. It showcases project activity and community involvement.

2. Pull Request Contributions: Pull requests represent concrete contributions from users, including adding features, fixing bugs, etc. Even though the number of pull requests might be relatively less, it signifies some users' willingness to contribute technically to the project.

3. Project Direction and Needs: An increase in issues might reflect users' expectations, needs, or identified problems with the project. Fewer pull requests might indicate that the project is still in a development phase, requiring more features or improvements to attract more developers.`,

	"language-distribution": `This bar chart shows the distribution of programming languages used in the repositories.

JavaScript has the highest count, significantly more than any other language shown on the chart, suggesting that it is the most common or popular language among the data represented.

Python comes next, with a count that is less than half of JavaScript's, but still considerably higher than the rest of the languages on the chart.

HTML and CSS follow, indicating a good number of projects or usages. This makes sense given that these languages are foundational to web development, often used along with JavaScript.

After the top four languages, there is a sharp drop-off in counts. Languages like C++, C, Java, TypeScript, and Ruby show moderate counts.

Many languages on the chart have very low counts compared to the top languages, which could suggest they are less commonly used in the dataset being analyzed or they are specialized languages for specific domains.`,

	"forks-vs-stars": `This scatter plot presents the correlation between the counts of forks and stars across individual repositories. Additionally, it features a fitted curve, offering a visual representation of the relationship between these two variables.

The majority of the data points are concentrated within the range of 0 to 200 for both stars and forks counts. Notably, these points predominantly overlap with the curve within this range. However, upon considering the overall distribution, most data points do not precisely align with the curve. This divergence suggests a potential lack of direct correlation between the number of stars and forks.

Certain instances stand out, such as repositories with nearly 1000 stars yet exhibiting a minimal count of forks, or conversely, repositories with high fork counts but a significantly lower number of stars. This observation implies that a repository's popularity isn't solely contingent on its collaboration level.

In summary, the relationship between stars and forks is not consistently linear. Popularity and collaboration, as depicted by stars and forks counts, do not universally correlate, indicating that other factors significantly influence a repository's prominence and community engagement.`,

	"correlation-matrix": `This heatmap is created to gain a deeper insight into the correlation between different numerical variables in the GitHub dataset.
It suggests that there are some positive relationships between the various metrics of GitHub repositories, with the number of contributors showing the most consistent positive correlation with other metrics. However, none of the correlations are very strong, which suggests that while there are tendencies, they are not necessarily indicative of a strong predictive relationship.

Stars and forks have a positive correlation of 0.26, which means that repositories with more stars tend to have more forks, although the relationship is not very strong.

Issues have a very low positive correlation with stars (0.06) and forks (0.13), indicating that the number of issues is not strongly related to the number of stars or forks.

Pull requests show a moderate positive correlation with issues (0.31), suggesting that repositories with more issues tend to have more pull requests.

Contributors have a positive correlation with forks (0.28) and a moderate positive correlation with issues (0.36) and pull requests (0.14).

There are some very small negative correlations present (e.g., stars with pull requests at -0.0037), but these are so close to zero that they indicate no meaningful relationship.`,
}

// Narrative returns the commentary for a chart ID. All "top-<category>"
// charts share one text. Unknown IDs yield "".
func Narrative(id string) string {
	if strings.HasPrefix(id, "top-") && id != "top-popular" {
		return topNarrative
	}
	return narratives[id]
}

// Paragraphs splits a narrative on blank lines.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
